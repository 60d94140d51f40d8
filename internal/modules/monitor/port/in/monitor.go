package in

import (
	"context"

	"robotutor/internal/modules/monitor/dto"
)

type Usecase interface {
	SessionState(ctx context.Context, sessionID string) (dto.GraphStateOutput, error)
	ActiveSessions(ctx context.Context) ([]dto.GraphStateOutput, error)
	DashboardStats(ctx context.Context) (dto.DashboardStatsOutput, error)
}
