package in

import (
	"context"

	"robotutor/internal/modules/session/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.SessionSummaryOutput, error)
	Get(ctx context.Context, id string) (dto.SessionDetailOutput, error)
	StudentStats(ctx context.Context, studentID string) (dto.StudentStatsOutput, error)
}
