package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	lessondomain "robotutor/internal/modules/lesson/domain"
	sessiondomain "robotutor/internal/modules/session/domain"
	"robotutor/internal/modules/tutor/domain"
	"robotutor/internal/modules/tutor/service"
	apperrors "robotutor/internal/platform/errors"
)

type fakeClock struct {
	values []time.Time
	idx    int
}

func (f *fakeClock) Now() time.Time {
	if f.idx >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.idx]
	f.idx++
	return v
}

type fakeID struct{ value string }

func (f fakeID) New() string { return f.value }

type fakeLessonReader struct {
	lesson lessondomain.Lesson
}

func (f *fakeLessonReader) Get(_ context.Context, id string) (lessondomain.Lesson, error) {
	if id != f.lesson.ID {
		return lessondomain.Lesson{}, fmt.Errorf("%w: lesson %s", apperrors.ErrNotFound, id)
	}
	return f.lesson, nil
}

// fakeSessionStore records every persisted snapshot in order.
type fakeSessionStore struct {
	current   *sessiondomain.Session
	snapshots []sessiondomain.Session
	failSaves int
}

func (f *fakeSessionStore) Save(_ context.Context, session sessiondomain.Session) error {
	if f.failSaves > 0 {
		f.failSaves--
		return fmt.Errorf("%w: disk full", apperrors.ErrPersistence)
	}
	copied := session
	copied.Transcript = append([]sessiondomain.TranscriptEntry(nil), session.Transcript...)
	f.current = &copied
	f.snapshots = append(f.snapshots, copied)
	return nil
}

func (f *fakeSessionStore) FindOpen(_ context.Context, studentID, lessonID string) (sessiondomain.Session, error) {
	if f.current == nil || f.current.StudentID != studentID || f.current.LessonID != lessonID || f.current.EndedAt != nil {
		return sessiondomain.Session{}, fmt.Errorf("%w: no open session", apperrors.ErrNotFound)
	}
	return *f.current, nil
}

type fakeContent struct {
	questions    []domain.QuizQuestion
	quizFailures int
	sumFailures  int
	quizCalls    int
}

func (f *fakeContent) GenerateQuiz(_ context.Context, _ lessondomain.Lesson, _ []sessiondomain.TranscriptEntry, _ int) ([]domain.QuizQuestion, error) {
	f.quizCalls++
	if f.quizFailures > 0 {
		f.quizFailures--
		return nil, fmt.Errorf("%w: content plugin down", apperrors.ErrCollaborator)
	}
	return f.questions, nil
}

func (f *fakeContent) Summarize(_ context.Context, _ lessondomain.Lesson, _ sessiondomain.Session) (sessiondomain.Summary, error) {
	if f.sumFailures > 0 {
		f.sumFailures--
		return sessiondomain.Summary{}, fmt.Errorf("%w: content plugin down", apperrors.ErrCollaborator)
	}
	return sessiondomain.Summary{
		KeyTakeaways: []string{"plants eat light"},
		NextStep:     "lesson about roots",
	}, nil
}

type fakeGrader struct {
	result   sessiondomain.GradingResult
	failures int
	calls    int
}

func (f *fakeGrader) GradeQuiz(_ context.Context, questions []domain.QuizQuestion, _ []string) (sessiondomain.GradingResult, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return sessiondomain.GradingResult{}, fmt.Errorf("%w: grader plugin down", apperrors.ErrCollaborator)
	}
	return f.result, nil
}

type fakeDevice struct {
	said    []string
	answers []string
	idx     int
}

func (f *fakeDevice) Say(_ context.Context, text string) error {
	f.said = append(f.said, text)
	return nil
}
func (f *fakeDevice) SetEmotion(context.Context, string) error { return nil }
func (f *fakeDevice) DoMotion(context.Context, string) error   { return nil }

func (f *fakeDevice) Ask(_ context.Context, _ string) (string, error) {
	if f.idx >= len(f.answers) {
		return "", nil
	}
	answer := f.answers[f.idx]
	f.idx++
	return answer, nil
}

func threeSegmentLesson() lessondomain.Lesson {
	return lessondomain.Lesson{
		ID:    "lesson-1",
		Title: "Photosynthesis",
		Segments: []lessondomain.Segment{
			{Title: "Light", Minutes: 2, Script: "Plants capture light with their leaves.", CheckQuestion: "What captures light?"},
			{Title: "Water", Minutes: 2, Script: "Roots pull water up from the soil.", CheckQuestion: "Where does water come from?"},
			{Title: "Sugar", Minutes: 2, Script: "Light and water become sugar for the plant.", CheckQuestion: "What does the plant make?"},
		},
		CreatedAt: time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC),
	}
}

func fiveQuestions() []domain.QuizQuestion {
	questions := make([]domain.QuizQuestion, 5)
	for i := range questions {
		questions[i] = domain.QuizQuestion{
			Question:    fmt.Sprintf("question %d", i+1),
			IdealAnswer: fmt.Sprintf("ideal answer %d", i+1),
		}
	}
	return questions
}

func newService(store *fakeSessionStore, content *fakeContent, grader *fakeGrader, device *fakeDevice) *service.TutorService {
	clk := &fakeClock{values: []time.Time{
		time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
	}}
	svc := service.NewTutorService(clk, fakeID{value: "sess-1"},
		&fakeLessonReader{lesson: threeSegmentLesson()}, store, content, grader, device)
	svc.SetSleep(func(time.Duration) {})
	return svc
}

func TestFullRunPersistsEveryStage(t *testing.T) {
	t.Parallel()

	store := &fakeSessionStore{}
	content := &fakeContent{questions: fiveQuestions()}
	grader := &fakeGrader{result: sessiondomain.GradingResult{TotalScore: 4, MaxScore: 5}}
	device := &fakeDevice{answers: []string{"leaves", "soil", "sugar", "a1", "a2", "a3", "a4", "a5"}}

	session, resumed, err := newService(store, content, grader, device).Run(context.Background(), "alice", "lesson-1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if resumed {
		t.Fatalf("fresh run must not report resumed")
	}
	if session.SegmentIndex != 3 {
		t.Fatalf("segment index = %d, want 3", session.SegmentIndex)
	}
	if session.Score == nil || *session.Score != 4 || *session.ScoreMax != 5 {
		t.Fatalf("score = %v/%v, want 4/5", session.Score, session.ScoreMax)
	}
	if session.EndedAt == nil {
		t.Fatalf("completed session must have end time")
	}
	if err := session.Validate(); err != nil {
		t.Fatalf("final session must validate: %v", err)
	}

	// create + introduce + 3 segments + quiz answers + grade + summary
	if len(store.snapshots) != 8 {
		t.Fatalf("snapshot count = %d, want 8", len(store.snapshots))
	}
	last := -1
	for i, snap := range store.snapshots {
		if snap.SegmentIndex < last {
			t.Fatalf("segment index regressed at snapshot %d: %d -> %d", i, last, snap.SegmentIndex)
		}
		last = snap.SegmentIndex
	}

	var roles []sessiondomain.Role
	for _, entry := range session.Transcript {
		roles = append(roles, entry.Role)
	}
	wantRoles := map[sessiondomain.Role]bool{}
	for _, role := range roles {
		wantRoles[role] = true
	}
	for _, role := range []sessiondomain.Role{
		sessiondomain.RoleTeacher, sessiondomain.RoleStudent,
		sessiondomain.RoleQuizzer, sessiondomain.RoleGrader, sessiondomain.RoleSummary,
	} {
		if !wantRoles[role] {
			t.Fatalf("transcript missing role %s", role)
		}
	}
}

func TestResumeNeverReteachesOrSkips(t *testing.T) {
	t.Parallel()

	for k := 0; k <= 3; k++ {
		k := k
		t.Run(fmt.Sprintf("crash_after_index_%d", k), func(t *testing.T) {
			t.Parallel()

			store := &fakeSessionStore{}
			transcript := []sessiondomain.TranscriptEntry{{Role: sessiondomain.RoleTeacher, Text: "welcome"}}
			for i := 0; i < k; i++ {
				transcript = append(transcript, sessiondomain.TranscriptEntry{
					Role: sessiondomain.RoleTeacher, Text: fmt.Sprintf("segment %d", i), Segment: i,
				})
			}
			persisted := sessiondomain.Session{
				ID: "sess-1", StudentID: "alice", LessonID: "lesson-1",
				SegmentIndex: k, Transcript: transcript,
				StartedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
			}
			store.current = &persisted

			content := &fakeContent{questions: fiveQuestions()}
			grader := &fakeGrader{result: sessiondomain.GradingResult{TotalScore: 5, MaxScore: 5}}
			device := &fakeDevice{}

			session, resumed, err := newService(store, content, grader, device).Run(context.Background(), "alice", "lesson-1")
			if err != nil {
				t.Fatalf("resume run: %v", err)
			}
			if !resumed {
				t.Fatalf("run against open session must report resumed")
			}

			for _, snap := range store.snapshots {
				if snap.SegmentIndex < k {
					t.Fatalf("resume persisted segment index %d below crash point %d", snap.SegmentIndex, k)
				}
			}
			if session.SegmentIndex != 3 {
				t.Fatalf("final segment index = %d, want 3", session.SegmentIndex)
			}

			// segment k must be taught exactly once, k-1 never again
			countFor := func(segment int) int {
				n := 0
				for _, entry := range session.Transcript {
					if entry.Role == sessiondomain.RoleTeacher && entry.Segment == segment &&
						entry.Text == threeSegmentLesson().Segments[segment].Script {
						n++
					}
				}
				return n
			}
			if k < 3 {
				if got := countFor(k); got != 1 {
					t.Fatalf("segment %d taught %d times, want 1", k, got)
				}
			}
			if k > 0 {
				if got := countFor(k - 1); got != 0 {
					t.Fatalf("segment %d re-taught after resume", k-1)
				}
			}
		})
	}
}

func TestResumeAfterGradeOnlySummarizes(t *testing.T) {
	t.Parallel()

	score, scoreMax := 4, 5
	store := &fakeSessionStore{}
	persisted := sessiondomain.Session{
		ID: "sess-1", StudentID: "alice", LessonID: "lesson-1",
		SegmentIndex: 3, Score: &score, ScoreMax: &scoreMax,
		Transcript: []sessiondomain.TranscriptEntry{{Role: sessiondomain.RoleGrader, Text: "4/5"}},
		StartedAt:  time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}
	store.current = &persisted

	content := &fakeContent{questions: fiveQuestions()}
	grader := &fakeGrader{}

	session, _, err := newService(store, content, grader, &fakeDevice{}).Run(context.Background(), "alice", "lesson-1")
	if err != nil {
		t.Fatalf("resume run: %v", err)
	}
	if grader.calls != 0 {
		t.Fatalf("grader called %d times on summarize-only resume", grader.calls)
	}
	if content.quizCalls != 0 {
		t.Fatalf("quiz regenerated on summarize-only resume")
	}
	if session.EndedAt == nil {
		t.Fatalf("resumed session must be closed out")
	}
	if *session.Score != 4 {
		t.Fatalf("score changed on resume: %d", *session.Score)
	}
}

func TestGraderExhaustionStallsWithoutScore(t *testing.T) {
	t.Parallel()

	store := &fakeSessionStore{}
	content := &fakeContent{questions: fiveQuestions()}
	grader := &fakeGrader{failures: 3}

	session, _, err := newService(store, content, grader, &fakeDevice{}).Run(context.Background(), "alice", "lesson-1")
	if !errors.Is(err, apperrors.ErrSessionStalled) {
		t.Fatalf("want ErrSessionStalled, got %v", err)
	}
	if grader.calls != 3 {
		t.Fatalf("grader attempts = %d, want 3", grader.calls)
	}
	if session.Score != nil || session.EndedAt != nil {
		t.Fatalf("stalled session must have no score and no end time")
	}
	if store.current.Score != nil {
		t.Fatalf("stall must not persist a score")
	}
	// a later run resumes straight into the quiz stage
	if got := domain.StageFor(*store.current, 3); got != domain.StageQuiz {
		t.Fatalf("stalled session resumes at %s, want %s", got, domain.StageQuiz)
	}
}

func TestInvalidGradeStallsWithoutScore(t *testing.T) {
	t.Parallel()

	store := &fakeSessionStore{}
	content := &fakeContent{questions: fiveQuestions()}
	grader := &fakeGrader{result: sessiondomain.GradingResult{TotalScore: 0, MaxScore: 0}}

	session, _, err := newService(store, content, grader, &fakeDevice{}).Run(context.Background(), "alice", "lesson-1")
	if !errors.Is(err, apperrors.ErrSessionStalled) {
		t.Fatalf("want ErrSessionStalled, got %v", err)
	}
	if grader.calls != 3 {
		t.Fatalf("grader attempts = %d, want 3", grader.calls)
	}
	if session.Score != nil || session.ScoreMax != nil {
		t.Fatalf("invalid grade must not reach the session")
	}
	for i, snap := range store.snapshots {
		if err := snap.Validate(); err != nil {
			t.Fatalf("snapshot %d invalid: %v", i, err)
		}
	}
}

func TestScoreAboveMaxStallsWithoutScore(t *testing.T) {
	t.Parallel()

	store := &fakeSessionStore{}
	content := &fakeContent{questions: fiveQuestions()}
	grader := &fakeGrader{result: sessiondomain.GradingResult{TotalScore: 7, MaxScore: 5}}

	_, _, err := newService(store, content, grader, &fakeDevice{}).Run(context.Background(), "alice", "lesson-1")
	if !errors.Is(err, apperrors.ErrSessionStalled) {
		t.Fatalf("want ErrSessionStalled, got %v", err)
	}
	if store.current.Score != nil {
		t.Fatalf("out-of-range grade must not be persisted")
	}
}

func TestQuizGenerationRetriesOnceThenStalls(t *testing.T) {
	t.Parallel()

	store := &fakeSessionStore{}
	content := &fakeContent{questions: fiveQuestions(), quizFailures: 2}
	grader := &fakeGrader{result: sessiondomain.GradingResult{TotalScore: 5, MaxScore: 5}}

	_, _, err := newService(store, content, grader, &fakeDevice{}).Run(context.Background(), "alice", "lesson-1")
	if !errors.Is(err, apperrors.ErrSessionStalled) {
		t.Fatalf("want ErrSessionStalled, got %v", err)
	}
	if content.quizCalls != 2 {
		t.Fatalf("quiz generation attempts = %d, want 2", content.quizCalls)
	}
	var tagged bool
	for _, entry := range store.current.Transcript {
		if entry.Role == sessiondomain.RoleQuizzer && entry.Error != "" {
			tagged = true
		}
	}
	if !tagged {
		t.Fatalf("stall must persist an error-tagged quiz entry")
	}
}

func TestPersistenceFailureIsFatal(t *testing.T) {
	t.Parallel()

	store := &fakeSessionStore{failSaves: 1}
	content := &fakeContent{questions: fiveQuestions()}
	grader := &fakeGrader{result: sessiondomain.GradingResult{TotalScore: 5, MaxScore: 5}}

	_, _, err := newService(store, content, grader, &fakeDevice{}).Run(context.Background(), "alice", "lesson-1")
	if !errors.Is(err, apperrors.ErrPersistence) {
		t.Fatalf("want ErrPersistence, got %v", err)
	}
	if len(store.snapshots) != 0 {
		t.Fatalf("no snapshot must be recorded after failed create")
	}
}
