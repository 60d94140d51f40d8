package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"robotutor/internal/modules/lesson/domain"
	lessonout "robotutor/internal/modules/lesson/port/out"
	"robotutor/internal/platform/clock"
	apperrors "robotutor/internal/platform/errors"
	"robotutor/internal/platform/id"
)

type LessonService struct {
	clock   clock.Clock
	idGen   id.Generator
	store   lessonout.LessonStore
	reader  lessonout.SourceReader
	planner lessonout.Planner
}

func NewLessonService(clock clock.Clock, idGen id.Generator, store lessonout.LessonStore, reader lessonout.SourceReader, planner lessonout.Planner) *LessonService {
	return &LessonService{clock: clock, idGen: idGen, store: store, reader: reader, planner: planner}
}

// Plan extracts the source document's text, asks the content collaborator
// for a lesson plan and stores the result. Lessons never change after this.
func (s *LessonService) Plan(ctx context.Context, sourcePath, title string) (domain.Lesson, error) {
	if strings.TrimSpace(sourcePath) == "" {
		return domain.Lesson{}, fmt.Errorf("%w: source path is required", apperrors.ErrInvalidInput)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	}

	text, err := s.reader.Extract(ctx, sourcePath)
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("extract source text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return domain.Lesson{}, fmt.Errorf("%w: source document %s has no extractable text", apperrors.ErrInvalidInput, sourcePath)
	}

	lesson, err := s.planner.PlanLesson(ctx, title, filepath.Base(sourcePath), text)
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("%w: plan lesson: %v", apperrors.ErrCollaborator, err)
	}
	lesson.ID = s.idGen.New()
	if strings.TrimSpace(lesson.Title) == "" {
		lesson.Title = title
	}
	lesson.CreatedAt = s.clock.Now()
	if err := lesson.Validate(); err != nil {
		return domain.Lesson{}, fmt.Errorf("%w: collaborator returned invalid plan: %v", apperrors.ErrCollaborator, err)
	}
	if err := s.store.Save(ctx, lesson); err != nil {
		return domain.Lesson{}, fmt.Errorf("%w: save lesson: %v", apperrors.ErrPersistence, err)
	}
	return lesson, nil
}

func (s *LessonService) Get(ctx context.Context, lessonID string) (domain.Lesson, error) {
	if strings.TrimSpace(lessonID) == "" {
		return domain.Lesson{}, fmt.Errorf("%w: lesson id is required", apperrors.ErrInvalidInput)
	}
	return s.store.Get(ctx, lessonID)
}

func (s *LessonService) List(ctx context.Context) ([]domain.Lesson, error) {
	return s.store.List(ctx)
}
