package in

import (
	"context"

	"robotutor/internal/modules/session/dto"
	sessionin "robotutor/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.SessionSummaryOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Get(ctx context.Context, id string) (dto.SessionDetailOutput, error) {
	return h.usecase.Get(ctx, id)
}

func (h CLIHandler) StudentStats(ctx context.Context, studentID string) (dto.StudentStatsOutput, error) {
	return h.usecase.StudentStats(ctx, studentID)
}
