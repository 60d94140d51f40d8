package in

import (
	"context"

	"robotutor/internal/modules/tutor/dto"
	tutorin "robotutor/internal/modules/tutor/port/in"
)

type CLIHandler struct {
	usecase tutorin.Usecase
}

func NewCLIHandler(usecase tutorin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Teach(ctx context.Context, studentID, lessonID string) (dto.TeachOutput, error) {
	return h.usecase.Teach(ctx, dto.TeachInput{StudentID: studentID, LessonID: lessonID})
}
