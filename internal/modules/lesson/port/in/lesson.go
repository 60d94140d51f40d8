package in

import (
	"context"

	"robotutor/internal/modules/lesson/dto"
)

type Usecase interface {
	Plan(ctx context.Context, input dto.PlanInput) (dto.PlanOutput, error)
	List(ctx context.Context) ([]dto.LessonOutput, error)
	Get(ctx context.Context, id string) (dto.LessonDetailOutput, error)
}
