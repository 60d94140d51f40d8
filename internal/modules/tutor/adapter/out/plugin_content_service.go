package out

import (
	"context"
	"fmt"

	lessondomain "robotutor/internal/modules/lesson/domain"
	sessiondomain "robotutor/internal/modules/session/domain"
	"robotutor/internal/modules/tutor/domain"
	tutorout "robotutor/internal/modules/tutor/port/out"
	apperrors "robotutor/internal/platform/errors"
	"robotutor/internal/tutorplugin"
)

// PluginContentService drives the content collaborator binary. Connections
// are per call: the guests hold no state between RPCs.
type PluginContentService struct {
	binary string
}

func NewPluginContentService(binary string) tutorout.ContentService {
	return &PluginContentService{binary: binary}
}

func (p *PluginContentService) GenerateQuiz(ctx context.Context, lesson lessondomain.Lesson, transcript []sessiondomain.TranscriptEntry, count int) ([]domain.QuizQuestion, error) {
	client, closer, err := tutorplugin.Open(p.binary)
	if err != nil {
		return nil, fmt.Errorf("%w: open content plugin: %v", apperrors.ErrCollaborator, err)
	}
	defer closer()

	resp, err := client.GenerateQuiz(ctx, &tutorplugin.GenerateQuizRequest{
		LessonTitle: lesson.Title,
		Scripts:     lesson.Scripts(),
		Transcript:  toWireTranscript(transcript),
		Count:       count,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generate quiz rpc: %v", apperrors.ErrCollaborator, err)
	}
	questions := make([]domain.QuizQuestion, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		questions = append(questions, domain.QuizQuestion{
			Question:     q.Question,
			IdealAnswer:  q.IdealAnswer,
			RubricPoints: q.RubricPoints,
		})
	}
	return questions, nil
}

func (p *PluginContentService) Summarize(ctx context.Context, lesson lessondomain.Lesson, session sessiondomain.Session) (sessiondomain.Summary, error) {
	client, closer, err := tutorplugin.Open(p.binary)
	if err != nil {
		return sessiondomain.Summary{}, fmt.Errorf("%w: open content plugin: %v", apperrors.ErrCollaborator, err)
	}
	defer closer()

	resp, err := client.Summarize(ctx, &tutorplugin.SummarizeRequest{
		LessonTitle: lesson.Title,
		StudentID:   session.StudentID,
		Transcript:  toWireTranscript(session.Transcript),
		Score:       session.Score,
		ScoreMax:    session.ScoreMax,
	})
	if err != nil {
		return sessiondomain.Summary{}, fmt.Errorf("%w: summarize rpc: %v", apperrors.ErrCollaborator, err)
	}
	return sessiondomain.Summary{
		KeyTakeaways: resp.KeyTakeaways,
		Vocabulary:   resp.Vocabulary,
		Strengths:    resp.Strengths,
		Improvements: resp.Improvements,
		NextStep:     resp.NextStep,
	}, nil
}

func toWireTranscript(transcript []sessiondomain.TranscriptEntry) []tutorplugin.TranscriptLine {
	lines := make([]tutorplugin.TranscriptLine, 0, len(transcript))
	for _, entry := range transcript {
		lines = append(lines, tutorplugin.TranscriptLine{Role: string(entry.Role), Text: entry.Text})
	}
	return lines
}
