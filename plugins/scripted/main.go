// robotutor-scripted is the bundled deterministic collaborator. It plans
// lessons from the source text itself, writes quizzes from segment scripts
// and grades by keyword overlap, so the whole pipeline works offline.
package main

import (
	"context"
	"fmt"
	"strings"

	"robotutor/internal/tutorplugin"
)

const maxSegments = 5

type server struct{}

func (s *server) Describe(_ context.Context, _ *tutorplugin.Empty) (*tutorplugin.Info, error) {
	return &tutorplugin.Info{
		Name:    "scripted",
		Version: "1.0.0",
		Roles:   []string{"content", "grader"},
	}, nil
}

func (s *server) PlanLesson(_ context.Context, in *tutorplugin.PlanLessonRequest) (*tutorplugin.PlanLessonResponse, error) {
	paragraphs := splitParagraphs(in.SourceText)
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("source %s has no usable text", in.SourceName)
	}
	if len(paragraphs) > maxSegments {
		paragraphs = paragraphs[:maxSegments]
	}

	emotions := []string{"happy", "curious", "excited"}
	motions := []string{"nod", "point", "open_arms"}

	title := in.Title
	if title == "" {
		title = firstSentence(paragraphs[0])
	}

	resp := &tutorplugin.PlanLessonResponse{Title: title}
	for i, paragraph := range paragraphs {
		segTitle := truncateWords(firstSentence(paragraph), 8)
		resp.Segments = append(resp.Segments, tutorplugin.Segment{
			Title:         segTitle,
			Minutes:       minutesFor(paragraph),
			Script:        paragraph,
			CheckQuestion: fmt.Sprintf("Can you tell me, in your own words, about %s?", strings.ToLower(segTitle)),
			Emotion:       emotions[i%len(emotions)],
			Motion:        motions[i%len(motions)],
			Sources:       []string{in.SourceName},
		})
		resp.Objectives = append(resp.Objectives, fmt.Sprintf("Understand %s", strings.ToLower(segTitle)))
	}
	resp.NextLessonHint = fmt.Sprintf("Go deeper into %s with examples.", strings.ToLower(title))
	return resp, nil
}

func (s *server) GenerateQuiz(_ context.Context, in *tutorplugin.GenerateQuizRequest) (*tutorplugin.GenerateQuizResponse, error) {
	var sentences []string
	for _, script := range in.Scripts {
		sentences = append(sentences, splitSentences(script)...)
	}
	if len(sentences) == 0 {
		return nil, fmt.Errorf("no lesson content to quiz on")
	}
	count := in.Count
	if count <= 0 {
		count = 5
	}

	resp := &tutorplugin.GenerateQuizResponse{}
	stride := len(sentences) / count
	if stride == 0 {
		stride = 1
	}
	for i := 0; len(resp.Questions) < count; i += stride {
		sentence := sentences[i%len(sentences)]
		resp.Questions = append(resp.Questions, tutorplugin.QuizQuestion{
			Question:     fmt.Sprintf("What do you remember about this: %q?", truncateWords(sentence, 12)),
			IdealAnswer:  sentence,
			RubricPoints: topKeywords(sentence, 3),
		})
	}
	return resp, nil
}

func (s *server) GradeQuiz(_ context.Context, in *tutorplugin.GradeQuizRequest) (*tutorplugin.GradeQuizResponse, error) {
	if len(in.Questions) == 0 {
		return nil, fmt.Errorf("nothing to grade")
	}
	resp := &tutorplugin.GradeQuizResponse{MaxScore: len(in.Questions)}
	for i, question := range in.Questions {
		answer := ""
		if i < len(in.Answers) {
			answer = in.Answers[i]
		}
		score := 0
		feedback := "Missed the key idea."
		if overlapCorrect(question.IdealAnswer, answer) {
			score = 1
			feedback = "Covered the key idea."
		}
		resp.TotalScore += score
		resp.PerQuestion = append(resp.PerQuestion, tutorplugin.QuestionScore{
			Question: question.Question,
			Score:    score,
			MaxScore: 1,
			Feedback: feedback,
		})
	}
	switch {
	case resp.TotalScore == resp.MaxScore:
		resp.OverallFeedback = "Perfect score, fantastic work!"
	case resp.TotalScore*2 >= resp.MaxScore:
		resp.OverallFeedback = "Solid understanding, keep practicing the gaps."
	default:
		resp.OverallFeedback = "Worth revisiting this lesson before moving on."
	}
	return resp, nil
}

func (s *server) Summarize(_ context.Context, in *tutorplugin.SummarizeRequest) (*tutorplugin.SummarizeResponse, error) {
	resp := &tutorplugin.SummarizeResponse{
		NextStep: fmt.Sprintf("Review %s and try the quiz again tomorrow.", in.LessonTitle),
	}
	for _, line := range in.Transcript {
		if line.Role == "teacher" && len(resp.KeyTakeaways) < 3 {
			resp.KeyTakeaways = append(resp.KeyTakeaways, truncateWords(firstSentence(line.Text), 14))
		}
	}
	if len(resp.KeyTakeaways) == 0 {
		resp.KeyTakeaways = []string{fmt.Sprintf("We covered %s.", in.LessonTitle)}
	}
	for _, takeaway := range resp.KeyTakeaways {
		resp.Vocabulary = append(resp.Vocabulary, topKeywords(takeaway, 1)...)
	}
	if in.Score != nil && in.ScoreMax != nil && *in.ScoreMax > 0 {
		if *in.Score*2 >= *in.ScoreMax {
			resp.Strengths = []string{"Recalled most of the lesson's key ideas."}
			resp.Improvements = []string{"Add more detail to quiz answers."}
		} else {
			resp.Strengths = []string{"Stayed engaged through the whole lesson."}
			resp.Improvements = []string{"Revisit the lesson segments before the next quiz."}
		}
	}
	return resp, nil
}

func splitParagraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if len(strings.Fields(block)) >= 5 {
			out = append(out, strings.Join(strings.Fields(block), " "))
		}
	}
	return out
}

func splitSentences(text string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		part = strings.TrimSpace(part)
		if len(strings.Fields(part)) >= 4 {
			out = append(out, part)
		}
	}
	return out
}

func firstSentence(text string) string {
	if sentences := splitSentences(text); len(sentences) > 0 {
		return sentences[0]
	}
	return strings.TrimSpace(text)
}

func truncateWords(text string, max int) string {
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}
	return strings.Join(words[:max], " ") + "..."
}

func minutesFor(paragraph string) int {
	minutes := len(strings.Fields(paragraph)) / 60
	if minutes < 1 {
		return 1
	}
	return minutes
}

func keywords(text string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
		})
		if len(word) >= 3 {
			words[word] = struct{}{}
		}
	}
	return words
}

func topKeywords(text string, max int) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
		})
		if len(word) < 5 {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
		if len(out) == max {
			break
		}
	}
	return out
}

func overlapCorrect(ideal, answer string) bool {
	idealWords := keywords(ideal)
	if len(idealWords) == 0 {
		return true
	}
	answerWords := keywords(answer)
	overlap := 0
	for word := range idealWords {
		if _, ok := answerWords[word]; ok {
			overlap++
		}
	}
	threshold := len(idealWords) / 2
	if threshold < 1 {
		threshold = 1
	}
	return overlap >= threshold
}

func main() {
	tutorplugin.Serve(&server{})
}
