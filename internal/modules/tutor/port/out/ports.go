package out

import (
	"context"

	lessondomain "robotutor/internal/modules/lesson/domain"
	sessiondomain "robotutor/internal/modules/session/domain"
	"robotutor/internal/modules/tutor/domain"
)

// ContentService is the content collaborator: it invents quiz questions and
// writes the closing summary.
type ContentService interface {
	GenerateQuiz(ctx context.Context, lesson lessondomain.Lesson, transcript []sessiondomain.TranscriptEntry, count int) ([]domain.QuizQuestion, error)
	Summarize(ctx context.Context, lesson lessondomain.Lesson, session sessiondomain.Session) (sessiondomain.Summary, error)
}

// GraderService is the grading collaborator.
type GraderService interface {
	GradeQuiz(ctx context.Context, questions []domain.QuizQuestion, answers []string) (sessiondomain.GradingResult, error)
}

// Device is whatever fronts the student: a robot, a console, or nothing.
// Say, SetEmotion and DoMotion are best effort; failures are logged and
// never fail a stage.
type Device interface {
	Say(ctx context.Context, text string) error
	SetEmotion(ctx context.Context, emotion string) error
	DoMotion(ctx context.Context, motion string) error
	// Ask speaks the prompt and blocks for the student's answer.
	Ask(ctx context.Context, prompt string) (string, error)
}

type LessonReader interface {
	Get(ctx context.Context, id string) (lessondomain.Lesson, error)
}

type SessionStore interface {
	Save(ctx context.Context, session sessiondomain.Session) error
	FindOpen(ctx context.Context, studentID, lessonID string) (sessiondomain.Session, error)
}
