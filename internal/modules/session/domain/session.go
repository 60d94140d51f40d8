// Package domain holds the persisted shape of a tutoring session: who was
// taught what, how far the run got, everything said along the way, and the
// final grade once it exists.
package domain

import (
	"fmt"
	"time"

	apperrors "robotutor/internal/platform/errors"
)

// Role identifies the speaker of a transcript entry.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleQuizzer Role = "quiz_agent"
	RoleGrader  Role = "grader_agent"
	RoleSummary Role = "summary_agent"
)

// QuestionScore is the grade for a single quiz answer.
type QuestionScore struct {
	Question string `json:"question"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
	Feedback string `json:"feedback,omitempty"`
}

// GradingResult is attached to the grader's transcript entry.
type GradingResult struct {
	TotalScore      int             `json:"total_score"`
	MaxScore        int             `json:"max_score"`
	PerQuestion     []QuestionScore `json:"per_question,omitempty"`
	OverallFeedback string          `json:"overall_feedback,omitempty"`
}

// Validate rejects grading results that break the score bounds a session
// snapshot must hold.
func (g GradingResult) Validate() error {
	if g.MaxScore <= 0 {
		return fmt.Errorf("%w: max score must be positive", apperrors.ErrInvalidInput)
	}
	if g.TotalScore < 0 || g.TotalScore > g.MaxScore {
		return fmt.Errorf("%w: total score %d outside 0..%d", apperrors.ErrInvalidInput, g.TotalScore, g.MaxScore)
	}
	return nil
}

// Summary is attached to the summary agent's closing entry.
type Summary struct {
	KeyTakeaways []string `json:"key_takeaways"`
	Vocabulary   []string `json:"vocabulary,omitempty"`
	Strengths    []string `json:"strengths,omitempty"`
	Improvements []string `json:"improvements,omitempty"`
	NextStep     string   `json:"next_step,omitempty"`
}

// TranscriptEntry is one turn of the session. Grading and Summary are only
// set on the corresponding agent entries; Error marks a skipped collaborator
// call whose fallback text lives in Text.
type TranscriptEntry struct {
	Role    Role           `json:"role"`
	Text    string         `json:"text"`
	Segment int            `json:"segment,omitempty"`
	Error   string         `json:"error,omitempty"`
	Grading *GradingResult `json:"grading,omitempty"`
	Summary *Summary       `json:"summary,omitempty"`
}

type Session struct {
	ID           string
	StudentID    string
	LessonID     string
	SegmentIndex int
	Transcript   []TranscriptEntry
	StartedAt    time.Time
	EndedAt      *time.Time
	Score        *int
	ScoreMax     *int
}

func (s Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	if s.StudentID == "" {
		return fmt.Errorf("%w: student id is required", apperrors.ErrInvalidInput)
	}
	if s.LessonID == "" {
		return fmt.Errorf("%w: lesson id is required", apperrors.ErrInvalidInput)
	}
	if s.SegmentIndex < 0 {
		return fmt.Errorf("%w: segment index must not be negative", apperrors.ErrInvalidInput)
	}
	if (s.Score == nil) != (s.ScoreMax == nil) {
		return fmt.Errorf("%w: score and score max must be set together", apperrors.ErrInvalidInput)
	}
	if s.Score != nil {
		if *s.ScoreMax <= 0 {
			return fmt.Errorf("%w: score max must be positive", apperrors.ErrInvalidInput)
		}
		if *s.Score < 0 || *s.Score > *s.ScoreMax {
			return fmt.Errorf("%w: score %d outside 0..%d", apperrors.ErrInvalidInput, *s.Score, *s.ScoreMax)
		}
	}
	if s.EndedAt != nil && s.EndedAt.Before(s.StartedAt) {
		return fmt.Errorf("%w: ended before started", apperrors.ErrInvalidInput)
	}
	return nil
}

// Completed reports whether the run finished: graded and closed out.
func (s Session) Completed() bool {
	return s.EndedAt != nil
}

// Scored reports whether the quiz has been graded.
func (s Session) Scored() bool {
	return s.Score != nil && s.ScoreMax != nil
}

func (s *Session) Append(entry TranscriptEntry) {
	s.Transcript = append(s.Transcript, entry)
}
