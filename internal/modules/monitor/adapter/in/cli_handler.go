package in

import (
	"context"

	"robotutor/internal/modules/monitor/dto"
	monitorin "robotutor/internal/modules/monitor/port/in"
)

type CLIHandler struct {
	usecase monitorin.Usecase
}

func NewCLIHandler(usecase monitorin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) SessionState(ctx context.Context, sessionID string) (dto.GraphStateOutput, error) {
	return h.usecase.SessionState(ctx, sessionID)
}

func (h CLIHandler) ActiveSessions(ctx context.Context) ([]dto.GraphStateOutput, error) {
	return h.usecase.ActiveSessions(ctx)
}

func (h CLIHandler) DashboardStats(ctx context.Context) (dto.DashboardStatsOutput, error) {
	return h.usecase.DashboardStats(ctx)
}
