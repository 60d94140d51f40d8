package out

import (
	"context"
	"time"

	"robotutor/internal/modules/session/domain"
)

// StudentStats aggregates a student's history across sessions. Best score
// is taken from the scored session with the highest percentage.
type StudentStats struct {
	StudentID     string
	SessionsTotal int
	BestScore     *int
	BestScoreMax  *int
	LatestSession *time.Time
}

type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	// FindOpen returns the most recent unfinished session for the pair,
	// or apperrors.ErrNotFound when every prior run has completed.
	FindOpen(ctx context.Context, studentID, lessonID string) (domain.Session, error)
	List(ctx context.Context) ([]domain.Session, error)
	ListActive(ctx context.Context) ([]domain.Session, error)
	StudentStats(ctx context.Context, studentID string) (StudentStats, error)
}
