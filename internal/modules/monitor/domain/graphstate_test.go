package domain_test

import (
	"testing"
	"time"

	lessondomain "robotutor/internal/modules/lesson/domain"
	"robotutor/internal/modules/monitor/domain"
	sessiondomain "robotutor/internal/modules/session/domain"
)

func lessonFixture() *lessondomain.Lesson {
	return &lessondomain.Lesson{
		ID:    "lesson-1",
		Title: "Photosynthesis",
		Segments: []lessondomain.Segment{
			{Title: "Light", Minutes: 2, Script: "a"},
			{Title: "Water", Minutes: 2, Script: "b"},
			{Title: "Sugar", Minutes: 2, Script: "c"},
			{Title: "Review", Minutes: 2, Script: "d"},
		},
	}
}

func sessionFixture(index int) sessiondomain.Session {
	return sessiondomain.Session{
		ID: "sess-1", StudentID: "alice", LessonID: "lesson-1",
		SegmentIndex: index,
		StartedAt:    time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestProjectIsDeterministic(t *testing.T) {
	t.Parallel()
	session := sessionFixture(2)
	lesson := lessonFixture()
	first := domain.Project(session, lesson)
	second := domain.Project(session, lesson)
	if !first.Equal(second) {
		t.Fatalf("projection not deterministic: %+v vs %+v", first, second)
	}
}

func TestProjectTeachNode(t *testing.T) {
	t.Parallel()
	state := domain.Project(sessionFixture(2), lessonFixture())
	if state.Node != domain.NodeTeach {
		t.Fatalf("node = %s, want teach", state.Node)
	}
	if state.ProgressPct != 50 {
		t.Fatalf("progress = %d, want 50", state.ProgressPct)
	}
	if state.ActiveSegment == nil || *state.ActiveSegment != "Sugar" {
		t.Fatalf("active segment = %v, want Sugar", state.ActiveSegment)
	}
	if state.ScorePct != nil {
		t.Fatalf("unscored session must not carry a score percent")
	}
}

func TestProjectMissingLesson(t *testing.T) {
	t.Parallel()
	state := domain.Project(sessionFixture(2), nil)
	if state.Node != domain.NodeTeach {
		t.Fatalf("node = %s, want teach", state.Node)
	}
	if state.SegmentCount != 0 || state.ProgressPct != 0 {
		t.Fatalf("missing lesson must project zero count and progress, got %d/%d",
			state.SegmentCount, state.ProgressPct)
	}
}

func TestProjectIndexPastCountIsQuiz(t *testing.T) {
	t.Parallel()
	state := domain.Project(sessionFixture(9), lessonFixture())
	if state.Node != domain.NodeQuiz {
		t.Fatalf("node = %s, want quiz", state.Node)
	}
	if state.ProgressPct != 100 {
		t.Fatalf("progress = %d, want clamped 100", state.ProgressPct)
	}
	if state.ActiveSegment != nil {
		t.Fatalf("quiz node must not name an active segment")
	}
}

func TestProjectScoredIsCompleteRegardlessOfIndex(t *testing.T) {
	t.Parallel()
	score, scoreMax := 4, 5
	session := sessionFixture(1)
	session.Score, session.ScoreMax = &score, &scoreMax

	state := domain.Project(session, lessonFixture())
	if state.Node != domain.NodeComplete {
		t.Fatalf("node = %s, want complete", state.Node)
	}
	if state.ProgressPct != 100 {
		t.Fatalf("complete progress = %d, want 100", state.ProgressPct)
	}
	if state.ScorePct == nil || *state.ScorePct != 80 {
		t.Fatalf("score pct = %v, want 80", state.ScorePct)
	}
}

func TestProjectCorruptScoreMaxLeavesPercentUnset(t *testing.T) {
	t.Parallel()
	score, scoreMax := 3, 0
	session := sessionFixture(4)
	session.Score, session.ScoreMax = &score, &scoreMax

	state := domain.Project(session, lessonFixture())
	if state.Node != domain.NodeComplete {
		t.Fatalf("node = %s, want complete", state.Node)
	}
	if state.ScorePct != nil {
		t.Fatalf("zero score max must leave score pct unset, got %d", *state.ScorePct)
	}
}

func TestProgressStaysInBounds(t *testing.T) {
	t.Parallel()
	for index := 0; index <= 10; index++ {
		state := domain.Project(sessionFixture(index), lessonFixture())
		if state.ProgressPct < 0 || state.ProgressPct > 100 {
			t.Fatalf("index %d: progress %d out of bounds", index, state.ProgressPct)
		}
	}
}

func TestAggregateStats(t *testing.T) {
	t.Parallel()

	score1, max1 := 4, 5
	score2, max2 := 1, 5
	ended := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	sessions := []sessiondomain.Session{
		{ID: "s1", StudentID: "alice", Score: &score1, ScoreMax: &max1, EndedAt: &ended},
		{ID: "s2", StudentID: "alice"},
		{ID: "s3", StudentID: "bob", Score: &score2, ScoreMax: &max2, EndedAt: &ended},
	}
	stats := domain.Aggregate(2, sessions)
	if stats.Lessons != 2 || stats.Sessions != 3 || stats.Students != 2 || stats.Completed != 2 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.AverageScorePct != 50.0 {
		t.Fatalf("average = %v, want 50.0", stats.AverageScorePct)
	}

	if !stats.Equal(domain.Aggregate(2, sessions)) {
		t.Fatalf("identical inputs must aggregate equal")
	}
}
