package usecase

import (
	"context"

	"robotutor/internal/modules/lesson/domain"
	"robotutor/internal/modules/lesson/dto"
	lessonin "robotutor/internal/modules/lesson/port/in"
	"robotutor/internal/modules/lesson/service"
)

type Interactor struct {
	svc *service.LessonService
}

func NewInteractor(svc *service.LessonService) lessonin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Plan(ctx context.Context, input dto.PlanInput) (dto.PlanOutput, error) {
	lesson, err := i.svc.Plan(ctx, input.SourcePath, input.Title)
	if err != nil {
		return dto.PlanOutput{}, err
	}
	return dto.PlanOutput{LessonID: lesson.ID, Title: lesson.Title, SegmentCount: len(lesson.Segments)}, nil
}

func (i *Interactor) List(ctx context.Context) ([]dto.LessonOutput, error) {
	lessons, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LessonOutput, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, dto.LessonOutput{
			ID:           lesson.ID,
			Title:        lesson.Title,
			SegmentCount: len(lesson.Segments),
			CreatedAt:    lesson.CreatedAt,
		})
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, id string) (dto.LessonDetailOutput, error) {
	lesson, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.LessonDetailOutput{}, err
	}
	return toDetail(lesson), nil
}

func toDetail(lesson domain.Lesson) dto.LessonDetailOutput {
	segments := make([]dto.SegmentOutput, 0, len(lesson.Segments))
	for _, seg := range lesson.Segments {
		segments = append(segments, dto.SegmentOutput{
			Title:         seg.Title,
			Minutes:       seg.Minutes,
			Script:        seg.Script,
			CheckQuestion: seg.CheckQuestion,
			Emotion:       seg.Emotion,
			Motion:        seg.Motion,
			Sources:       seg.Sources,
		})
	}
	return dto.LessonDetailOutput{
		ID:             lesson.ID,
		Title:          lesson.Title,
		Segments:       segments,
		Objectives:     lesson.Objectives,
		NextLessonHint: lesson.NextLessonHint,
		CreatedAt:      lesson.CreatedAt,
	}
}
