package in

import (
	"context"

	"robotutor/internal/modules/lesson/dto"
	lessonin "robotutor/internal/modules/lesson/port/in"
)

type CLIHandler struct {
	usecase lessonin.Usecase
}

func NewCLIHandler(usecase lessonin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Plan(ctx context.Context, sourcePath, title string) (dto.PlanOutput, error) {
	return h.usecase.Plan(ctx, dto.PlanInput{SourcePath: sourcePath, Title: title})
}

func (h CLIHandler) List(ctx context.Context) ([]dto.LessonOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Get(ctx context.Context, id string) (dto.LessonDetailOutput, error) {
	return h.usecase.Get(ctx, id)
}
