package out

import (
	"context"

	"robotutor/internal/modules/lesson/domain"
)

type LessonStore interface {
	Save(ctx context.Context, lesson domain.Lesson) error
	Get(ctx context.Context, id string) (domain.Lesson, error)
	List(ctx context.Context) ([]domain.Lesson, error)
}

// SourceReader extracts plain text from a lesson source document.
type SourceReader interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Planner is the content collaborator's lesson-planning surface. The
// returned lesson carries no id or timestamp; the service assigns both.
type Planner interface {
	PlanLesson(ctx context.Context, title, sourceName, sourceText string) (domain.Lesson, error)
}
