package out

import (
	"context"
	"fmt"

	sessiondomain "robotutor/internal/modules/session/domain"
	"robotutor/internal/modules/tutor/domain"
	tutorout "robotutor/internal/modules/tutor/port/out"
	apperrors "robotutor/internal/platform/errors"
	"robotutor/internal/tutorplugin"
)

type PluginGraderService struct {
	binary string
}

func NewPluginGraderService(binary string) tutorout.GraderService {
	return &PluginGraderService{binary: binary}
}

func (p *PluginGraderService) GradeQuiz(ctx context.Context, questions []domain.QuizQuestion, answers []string) (sessiondomain.GradingResult, error) {
	client, closer, err := tutorplugin.Open(p.binary)
	if err != nil {
		return sessiondomain.GradingResult{}, fmt.Errorf("%w: open grader plugin: %v", apperrors.ErrCollaborator, err)
	}
	defer closer()

	wireQuestions := make([]tutorplugin.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		wireQuestions = append(wireQuestions, tutorplugin.QuizQuestion{
			Question:     q.Question,
			IdealAnswer:  q.IdealAnswer,
			RubricPoints: q.RubricPoints,
		})
	}
	resp, err := client.GradeQuiz(ctx, &tutorplugin.GradeQuizRequest{Questions: wireQuestions, Answers: answers})
	if err != nil {
		return sessiondomain.GradingResult{}, fmt.Errorf("%w: grade quiz rpc: %v", apperrors.ErrCollaborator, err)
	}

	result := sessiondomain.GradingResult{
		TotalScore:      resp.TotalScore,
		MaxScore:        resp.MaxScore,
		OverallFeedback: resp.OverallFeedback,
	}
	result.PerQuestion = make([]sessiondomain.QuestionScore, 0, len(resp.PerQuestion))
	for _, qs := range resp.PerQuestion {
		result.PerQuestion = append(result.PerQuestion, sessiondomain.QuestionScore{
			Question: qs.Question,
			Score:    qs.Score,
			MaxScore: qs.MaxScore,
			Feedback: qs.Feedback,
		})
	}
	if err := result.Validate(); err != nil {
		return sessiondomain.GradingResult{}, fmt.Errorf("%w: grader result: %v", apperrors.ErrCollaborator, err)
	}
	return result, nil
}
