package usecase

import (
	"context"

	"robotutor/internal/modules/tutor/dto"
	portin "robotutor/internal/modules/tutor/port/in"
	"robotutor/internal/modules/tutor/service"
)

type Interactor struct {
	tutor *service.TutorService
}

func NewInteractor(tutor *service.TutorService) portin.Usecase {
	return &Interactor{tutor: tutor}
}

func (i *Interactor) Teach(ctx context.Context, input dto.TeachInput) (dto.TeachOutput, error) {
	session, resumed, err := i.tutor.Run(ctx, input.StudentID, input.LessonID)
	out := dto.TeachOutput{SessionID: session.ID, Resumed: resumed}
	if session.Score != nil {
		out.Score = *session.Score
	}
	if session.ScoreMax != nil {
		out.ScoreMax = *session.ScoreMax
	}
	for _, entry := range session.Transcript {
		if entry.Summary != nil {
			out.NextStep = entry.Summary.NextStep
		}
	}
	return out, err
}
