package usecase

import (
	"context"

	"robotutor/internal/modules/session/domain"
	"robotutor/internal/modules/session/dto"
	portin "robotutor/internal/modules/session/port/in"
	portout "robotutor/internal/modules/session/port/out"
)

type Interactor struct {
	store portout.SessionStore
}

func NewInteractor(store portout.SessionStore) portin.Usecase {
	return &Interactor{store: store}
}

func (i *Interactor) List(ctx context.Context) ([]dto.SessionSummaryOutput, error) {
	sessions, err := i.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionSummaryOutput, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSummary(s))
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, id string) (dto.SessionDetailOutput, error) {
	session, err := i.store.Get(ctx, id)
	if err != nil {
		return dto.SessionDetailOutput{}, err
	}
	detail := dto.SessionDetailOutput{SessionSummaryOutput: toSummary(session)}
	detail.Transcript = make([]dto.TranscriptEntryOutput, 0, len(session.Transcript))
	for _, entry := range session.Transcript {
		detail.Transcript = append(detail.Transcript, dto.TranscriptEntryOutput{
			Role:    string(entry.Role),
			Text:    entry.Text,
			Segment: entry.Segment,
			Error:   entry.Error,
		})
	}
	return detail, nil
}

func (i *Interactor) StudentStats(ctx context.Context, studentID string) (dto.StudentStatsOutput, error) {
	stats, err := i.store.StudentStats(ctx, studentID)
	if err != nil {
		return dto.StudentStatsOutput{}, err
	}
	return dto.StudentStatsOutput{
		StudentID:     stats.StudentID,
		SessionsTotal: stats.SessionsTotal,
		BestScore:     stats.BestScore,
		BestScoreMax:  stats.BestScoreMax,
		LatestSession: stats.LatestSession,
	}, nil
}

func toSummary(s domain.Session) dto.SessionSummaryOutput {
	return dto.SessionSummaryOutput{
		ID:           s.ID,
		StudentID:    s.StudentID,
		LessonID:     s.LessonID,
		SegmentIndex: s.SegmentIndex,
		StartedAt:    s.StartedAt,
		EndedAt:      s.EndedAt,
		Score:        s.Score,
		ScoreMax:     s.ScoreMax,
	}
}
