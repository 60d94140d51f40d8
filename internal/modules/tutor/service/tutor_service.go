// Package service runs the tutoring pipeline. Every stage persists the
// session before the next one starts, so a crash at any point resumes at
// the first unfinished stage instead of repeating delivered content.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	lessondomain "robotutor/internal/modules/lesson/domain"
	sessiondomain "robotutor/internal/modules/session/domain"
	"robotutor/internal/modules/tutor/domain"
	tutorout "robotutor/internal/modules/tutor/port/out"
	"robotutor/internal/platform/clock"
	"robotutor/internal/platform/ctxlog"
	apperrors "robotutor/internal/platform/errors"
	"robotutor/internal/platform/id"
)

const (
	criticalAttempts = 3
	criticalPause    = 2 * time.Second
)

type TutorService struct {
	clock   clock.Clock
	idGen   id.Generator
	lessons tutorout.LessonReader
	store   tutorout.SessionStore
	content tutorout.ContentService
	grader  tutorout.GraderService
	device  tutorout.Device
	sleep   func(time.Duration)
}

func NewTutorService(
	clk clock.Clock,
	idGen id.Generator,
	lessons tutorout.LessonReader,
	store tutorout.SessionStore,
	content tutorout.ContentService,
	grader tutorout.GraderService,
	device tutorout.Device,
) *TutorService {
	return &TutorService{
		clock:   clk,
		idGen:   idGen,
		lessons: lessons,
		store:   store,
		content: content,
		grader:  grader,
		device:  device,
		sleep:   time.Sleep,
	}
}

// SetSleep replaces the retry pause, used by tests to avoid real waits.
func (s *TutorService) SetSleep(sleep func(time.Duration)) {
	s.sleep = sleep
}

// Run teaches lessonID to studentID, resuming an open session when one
// exists. The returned session reflects the last persisted state even when
// the error is ErrSessionStalled.
func (s *TutorService) Run(ctx context.Context, studentID, lessonID string) (sessiondomain.Session, bool, error) {
	log := ctxlog.FromContext(ctx)

	lesson, err := s.lessons.Get(ctx, lessonID)
	if err != nil {
		return sessiondomain.Session{}, false, err
	}

	session, resumed, err := s.ensureSession(ctx, studentID, lessonID)
	if err != nil {
		return sessiondomain.Session{}, false, err
	}
	log.Info("session ready",
		"session_id", session.ID,
		"student_id", studentID,
		"lesson_id", lessonID,
		"resumed", resumed,
		"stage", string(domain.StageFor(session, len(lesson.Segments))))

	for {
		stage := domain.StageFor(session, len(lesson.Segments))
		switch stage {
		case domain.StageIntroduce:
			err = s.introduce(ctx, &session, lesson)
		case domain.StageTeach:
			err = s.teachSegment(ctx, &session, lesson)
		case domain.StageQuiz:
			err = s.quizAndGrade(ctx, &session, lesson)
		case domain.StageSummarize:
			err = s.summarize(ctx, &session, lesson)
		case domain.StageComplete:
			return session, resumed, nil
		}
		if err != nil {
			return session, resumed, err
		}
	}
}

func (s *TutorService) ensureSession(ctx context.Context, studentID, lessonID string) (sessiondomain.Session, bool, error) {
	open, err := s.store.FindOpen(ctx, studentID, lessonID)
	if err == nil {
		return open, true, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return sessiondomain.Session{}, false, err
	}
	session := sessiondomain.Session{
		ID:         s.idGen.New(),
		StudentID:  studentID,
		LessonID:   lessonID,
		Transcript: []sessiondomain.TranscriptEntry{},
		StartedAt:  s.clock.Now(),
	}
	if err := s.store.Save(ctx, session); err != nil {
		return sessiondomain.Session{}, false, err
	}
	return session, false, nil
}

func (s *TutorService) introduce(ctx context.Context, session *sessiondomain.Session, lesson lessondomain.Lesson) error {
	s.present(ctx, "happy", "wave")
	welcome := fmt.Sprintf("Hello %s! Today we're learning about %s. We'll go through %d parts, then a short quiz.",
		session.StudentID, lesson.Title, len(lesson.Segments))
	s.say(ctx, welcome)
	session.Append(sessiondomain.TranscriptEntry{Role: sessiondomain.RoleTeacher, Text: welcome})
	return s.store.Save(ctx, *session)
}

func (s *TutorService) teachSegment(ctx context.Context, session *sessiondomain.Session, lesson lessondomain.Lesson) error {
	log := ctxlog.FromContext(ctx)
	index := session.SegmentIndex
	segment := lesson.Segments[index]
	log.Info("teaching segment", "session_id", session.ID, "segment", index, "title", segment.Title)

	s.present(ctx, segment.Emotion, segment.Motion)
	s.say(ctx, segment.Script)
	session.Append(sessiondomain.TranscriptEntry{Role: sessiondomain.RoleTeacher, Text: segment.Script, Segment: index})

	if segment.CheckQuestion != "" {
		answer, askErr := s.ask(ctx, segment.CheckQuestion)
		entry := sessiondomain.TranscriptEntry{Role: sessiondomain.RoleStudent, Text: answer, Segment: index}
		if askErr != nil {
			log.Warn("check question skipped", "session_id", session.ID, "segment", index, "error", askErr)
			entry.Error = askErr.Error()
		} else {
			rating := domain.RateAnswer(segment.Script, answer)
			s.say(ctx, domain.Encouragement(rating))
		}
		session.Transcript = append(session.Transcript,
			sessiondomain.TranscriptEntry{Role: sessiondomain.RoleTeacher, Text: segment.CheckQuestion, Segment: index},
			entry)
	}

	session.SegmentIndex = index + 1
	return s.store.Save(ctx, *session)
}

// quizAndGrade runs the quiz and its grading as one stage: quiz questions
// are never persisted, so a crash anywhere in here resumes with a fresh
// quiz rather than grading answers to forgotten questions.
func (s *TutorService) quizAndGrade(ctx context.Context, session *sessiondomain.Session, lesson lessondomain.Lesson) error {
	log := ctxlog.FromContext(ctx)

	questions, err := s.generateQuiz(ctx, lesson, session.Transcript)
	if err != nil {
		log.Error("quiz generation failed", "session_id", session.ID, "error", err)
		session.Append(sessiondomain.TranscriptEntry{
			Role:  sessiondomain.RoleQuizzer,
			Text:  "Quiz could not be generated.",
			Error: err.Error(),
		})
		if saveErr := s.store.Save(ctx, *session); saveErr != nil {
			return saveErr
		}
		return fmt.Errorf("%w: quiz generation: %v", apperrors.ErrSessionStalled, err)
	}

	s.say(ctx, fmt.Sprintf("Great work! Time for a short quiz: %d questions.", len(questions)))
	answers := make([]string, 0, len(questions))
	for i, question := range questions {
		answer, askErr := s.ask(ctx, question.Question)
		entry := sessiondomain.TranscriptEntry{Role: sessiondomain.RoleStudent, Text: answer}
		if askErr != nil {
			log.Warn("quiz answer skipped", "session_id", session.ID, "question", i, "error", askErr)
			entry.Error = askErr.Error()
		} else {
			s.say(ctx, domain.Encouragement(domain.RateAnswer(question.IdealAnswer, answer)))
		}
		session.Transcript = append(session.Transcript,
			sessiondomain.TranscriptEntry{Role: sessiondomain.RoleQuizzer, Text: question.Question},
			entry)
		answers = append(answers, answer)
	}
	if err := s.store.Save(ctx, *session); err != nil {
		return err
	}

	var grading sessiondomain.GradingResult
	err = s.withAttempts(ctx, "grade", func() error {
		result, gradeErr := s.grader.GradeQuiz(ctx, questions, answers)
		if gradeErr != nil {
			return gradeErr
		}
		if gradeErr := result.Validate(); gradeErr != nil {
			return fmt.Errorf("%w: grading result: %v", apperrors.ErrCollaborator, gradeErr)
		}
		grading = result
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: grading: %v", apperrors.ErrSessionStalled, err)
	}

	text := fmt.Sprintf("You scored %d out of %d.", grading.TotalScore, grading.MaxScore)
	if grading.OverallFeedback != "" {
		text += " " + grading.OverallFeedback
	}
	s.say(ctx, text)
	session.Append(sessiondomain.TranscriptEntry{Role: sessiondomain.RoleGrader, Text: text, Grading: &grading})
	session.Score = &grading.TotalScore
	session.ScoreMax = &grading.MaxScore
	return s.store.Save(ctx, *session)
}

func (s *TutorService) summarize(ctx context.Context, session *sessiondomain.Session, lesson lessondomain.Lesson) error {
	var summary sessiondomain.Summary
	err := s.withAttempts(ctx, "summarize", func() error {
		var sumErr error
		summary, sumErr = s.content.Summarize(ctx, lesson, *session)
		return sumErr
	})
	if err != nil {
		return fmt.Errorf("%w: summarize: %v", apperrors.ErrSessionStalled, err)
	}

	text := closingText(summary)
	s.present(ctx, "proud", "celebrate")
	s.say(ctx, text)
	session.Append(sessiondomain.TranscriptEntry{Role: sessiondomain.RoleSummary, Text: text, Summary: &summary})
	ended := s.clock.Now()
	session.EndedAt = &ended
	return s.store.Save(ctx, *session)
}

func closingText(summary sessiondomain.Summary) string {
	text := "That's it for today!"
	if len(summary.KeyTakeaways) > 0 {
		text += " Remember: " + summary.KeyTakeaways[0]
	}
	if summary.NextStep != "" {
		text += " Next time: " + summary.NextStep
	}
	return text
}

func (s *TutorService) generateQuiz(ctx context.Context, lesson lessondomain.Lesson, transcript []sessiondomain.TranscriptEntry) ([]domain.QuizQuestion, error) {
	questions, err := s.content.GenerateQuiz(ctx, lesson, transcript, domain.DefaultQuizCount)
	if err != nil {
		questions, err = s.content.GenerateQuiz(ctx, lesson, transcript, domain.DefaultQuizCount)
	}
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: collaborator returned no questions", apperrors.ErrCollaborator)
	}
	return questions, nil
}

// withAttempts retries a stage-critical collaborator call a fixed number of
// times. Presentation calls never go through here.
func (s *TutorService) withAttempts(ctx context.Context, name string, call func() error) error {
	log := ctxlog.FromContext(ctx)
	var err error
	for attempt := 1; attempt <= criticalAttempts; attempt++ {
		if err = call(); err == nil {
			return nil
		}
		log.Warn("collaborator call failed", "call", name, "attempt", attempt, "error", err)
		if attempt < criticalAttempts {
			s.sleep(criticalPause)
		}
	}
	return err
}

// ask retries the device prompt once before reporting the failure.
func (s *TutorService) ask(ctx context.Context, prompt string) (string, error) {
	answer, err := s.device.Ask(ctx, prompt)
	if err != nil {
		answer, err = s.device.Ask(ctx, prompt)
	}
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (s *TutorService) say(ctx context.Context, text string) {
	if err := s.device.Say(ctx, text); err != nil {
		ctxlog.FromContext(ctx).Warn("device say failed", "error", err)
	}
}

func (s *TutorService) present(ctx context.Context, emotion, motion string) {
	log := ctxlog.FromContext(ctx)
	if emotion != "" {
		if err := s.device.SetEmotion(ctx, emotion); err != nil {
			log.Warn("device emotion failed", "emotion", emotion, "error", err)
		}
	}
	if motion != "" {
		if err := s.device.DoMotion(ctx, motion); err != nil {
			log.Warn("device motion failed", "motion", motion, "error", err)
		}
	}
}
