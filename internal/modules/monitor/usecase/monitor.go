package usecase

import (
	"context"
	"errors"

	lessondomain "robotutor/internal/modules/lesson/domain"
	"robotutor/internal/modules/monitor/domain"
	"robotutor/internal/modules/monitor/dto"
	portin "robotutor/internal/modules/monitor/port/in"
	portout "robotutor/internal/modules/monitor/port/out"
	"robotutor/internal/platform/ctxlog"
	apperrors "robotutor/internal/platform/errors"
)

type Interactor struct {
	sessions portout.SessionReader
	lessons  portout.LessonReader
}

func NewInteractor(sessions portout.SessionReader, lessons portout.LessonReader) portin.Usecase {
	return &Interactor{sessions: sessions, lessons: lessons}
}

func (i *Interactor) SessionState(ctx context.Context, sessionID string) (dto.GraphStateOutput, error) {
	session, err := i.sessions.Get(ctx, sessionID)
	if err != nil {
		return dto.GraphStateOutput{}, err
	}
	var lesson *lessondomain.Lesson
	found, err := i.lessons.Get(ctx, session.LessonID)
	switch {
	case err == nil:
		lesson = &found
	case !errors.Is(err, apperrors.ErrNotFound):
		return dto.GraphStateOutput{}, err
	default:
		ctxlog.FromContext(ctx).Warn("session references missing lesson",
			"session_id", sessionID, "lesson_id", session.LessonID)
	}
	return toGraphStateOutput(domain.Project(session, lesson)), nil
}

func (i *Interactor) ActiveSessions(ctx context.Context) ([]dto.GraphStateOutput, error) {
	sessions, err := i.sessions.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	lessons, err := i.lessons.List(ctx)
	if err != nil {
		return nil, err
	}
	lessonByID := map[string]*lessondomain.Lesson{}
	for idx := range lessons {
		lessonByID[lessons[idx].ID] = &lessons[idx]
	}
	out := make([]dto.GraphStateOutput, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toGraphStateOutput(domain.Project(session, lessonByID[session.LessonID])))
	}
	return out, nil
}

func (i *Interactor) DashboardStats(ctx context.Context) (dto.DashboardStatsOutput, error) {
	sessions, err := i.sessions.List(ctx)
	if err != nil {
		return dto.DashboardStatsOutput{}, err
	}
	lessons, err := i.lessons.List(ctx)
	if err != nil {
		return dto.DashboardStatsOutput{}, err
	}
	return toStatsOutput(domain.Aggregate(len(lessons), sessions)), nil
}

func toGraphStateOutput(state domain.GraphState) dto.GraphStateOutput {
	return dto.GraphStateOutput{
		SessionID:     state.SessionID,
		StudentID:     state.StudentID,
		LessonID:      state.LessonID,
		LessonTitle:   state.LessonTitle,
		Node:          string(state.Node),
		SegmentIndex:  state.SegmentIndex,
		SegmentCount:  state.SegmentCount,
		ProgressPct:   state.ProgressPct,
		ActiveSegment: state.ActiveSegment,
		ScorePct:      state.ScorePct,
	}
}

func toStatsOutput(stats domain.DashboardStats) dto.DashboardStatsOutput {
	return dto.DashboardStatsOutput{
		Lessons:         stats.Lessons,
		Sessions:        stats.Sessions,
		Students:        stats.Students,
		Completed:       stats.Completed,
		AverageScorePct: stats.AverageScorePct,
	}
}
