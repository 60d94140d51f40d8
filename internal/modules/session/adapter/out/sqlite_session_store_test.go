package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	out "robotutor/internal/modules/session/adapter/out"
	"robotutor/internal/modules/session/domain"
	sessionout "robotutor/internal/modules/session/port/out"
	apperrors "robotutor/internal/platform/errors"
)

func newStore(t *testing.T) (context.Context, sessionout.SessionStore) {
	t.Helper()
	store, err := out.NewSQLiteSessionStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return context.Background(), store
}

func sampleSession() domain.Session {
	return domain.Session{
		ID: "sess-1", StudentID: "alice", LessonID: "lesson-1",
		SegmentIndex: 2,
		Transcript: []domain.TranscriptEntry{
			{Role: domain.RoleTeacher, Text: "welcome"},
			{Role: domain.RoleTeacher, Text: "segment script", Segment: 0},
			{Role: domain.RoleStudent, Text: "an answer", Segment: 0},
		},
		StartedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	t.Parallel()
	ctx, store := newStore(t)

	session := sampleSession()
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.StudentID != "alice" || got.SegmentIndex != 2 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if len(got.Transcript) != 3 || got.Transcript[2].Text != "an answer" {
		t.Fatalf("transcript not preserved: %+v", got.Transcript)
	}
	if !got.StartedAt.Equal(session.StartedAt) {
		t.Fatalf("started_at = %v, want %v", got.StartedAt, session.StartedAt)
	}
	if got.Score != nil || got.EndedAt != nil {
		t.Fatalf("nullable fields must stay null")
	}
}

func TestUpsertAdvancesSnapshot(t *testing.T) {
	t.Parallel()
	ctx, store := newStore(t)

	session := sampleSession()
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	score, scoreMax := 4, 5
	ended := session.StartedAt.Add(30 * time.Minute)
	session.SegmentIndex = 3
	session.Score, session.ScoreMax = &score, &scoreMax
	session.EndedAt = &ended
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Score == nil || *got.Score != 4 || got.EndedAt == nil {
		t.Fatalf("upsert did not persist score and end: %+v", got)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("upsert created %d rows, want 1", len(all))
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	t.Parallel()
	ctx, store := newStore(t)
	if _, err := store.Get(ctx, "ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFindOpenSkipsCompletedRuns(t *testing.T) {
	t.Parallel()
	ctx, store := newStore(t)

	finished := sampleSession()
	finished.ID = "sess-done"
	score, scoreMax := 5, 5
	ended := finished.StartedAt.Add(time.Hour)
	finished.Score, finished.ScoreMax = &score, &scoreMax
	finished.EndedAt = &ended
	if err := store.Save(ctx, finished); err != nil {
		t.Fatalf("save finished: %v", err)
	}

	if _, err := store.FindOpen(ctx, "alice", "lesson-1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("completed run must not be open, got %v", err)
	}

	open := sampleSession()
	open.StartedAt = finished.StartedAt.Add(2 * time.Hour)
	if err := store.Save(ctx, open); err != nil {
		t.Fatalf("save open: %v", err)
	}

	got, err := store.FindOpen(ctx, "alice", "lesson-1")
	if err != nil {
		t.Fatalf("find open: %v", err)
	}
	if got.ID != "sess-1" {
		t.Fatalf("found %s, want sess-1", got.ID)
	}
}

func TestListActiveIsUnscoredOnly(t *testing.T) {
	t.Parallel()
	ctx, store := newStore(t)

	active := sampleSession()
	if err := store.Save(ctx, active); err != nil {
		t.Fatalf("save active: %v", err)
	}

	scored := sampleSession()
	scored.ID = "sess-2"
	score, scoreMax := 3, 5
	scored.Score, scored.ScoreMax = &score, &scoreMax
	if err := store.Save(ctx, scored); err != nil {
		t.Fatalf("save scored: %v", err)
	}

	got, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(got) != 1 || got[0].ID != "sess-1" {
		t.Fatalf("active set = %+v, want only sess-1", got)
	}
}

func TestStudentStats(t *testing.T) {
	t.Parallel()
	store, err := out.NewSQLiteSessionStore(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	first := sampleSession()
	score1, max1 := 2, 5
	first.Score, first.ScoreMax = &score1, &max1
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}

	second := sampleSession()
	second.ID = "sess-2"
	second.StartedAt = first.StartedAt.Add(time.Hour)
	score2, max2 := 4, 5
	second.Score, second.ScoreMax = &score2, &max2
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	stats, err := store.StudentStats(ctx, "alice")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.SessionsTotal != 2 {
		t.Fatalf("total = %d, want 2", stats.SessionsTotal)
	}
	if stats.BestScore == nil || *stats.BestScore != 4 || *stats.BestScoreMax != 5 {
		t.Fatalf("best = %v/%v, want 4/5", stats.BestScore, stats.BestScoreMax)
	}
	if stats.LatestSession == nil || !stats.LatestSession.Equal(second.StartedAt) {
		t.Fatalf("latest = %v, want %v", stats.LatestSession, second.StartedAt)
	}

	empty, err := store.StudentStats(ctx, "nobody")
	if err != nil {
		t.Fatalf("empty stats: %v", err)
	}
	if empty.SessionsTotal != 0 || empty.BestScore != nil || empty.LatestSession != nil {
		t.Fatalf("unknown student stats must be zero: %+v", empty)
	}
}
