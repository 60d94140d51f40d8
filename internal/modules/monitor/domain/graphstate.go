// Package domain projects persisted sessions into the derived view the
// dashboard consumes. Projection is pure: same inputs, same output, no
// clock involved, which is what makes change detection by comparison work.
package domain

import (
	"math"

	lessondomain "robotutor/internal/modules/lesson/domain"
	sessiondomain "robotutor/internal/modules/session/domain"
)

type Node string

const (
	NodeTeach    Node = "teach"
	NodeQuiz     Node = "quiz"
	NodeComplete Node = "complete"
)

type GraphState struct {
	SessionID     string  `json:"session_id"`
	StudentID     string  `json:"student_id"`
	LessonID      string  `json:"lesson_id"`
	LessonTitle   string  `json:"lesson_title,omitempty"`
	Node          Node    `json:"node"`
	SegmentIndex  int     `json:"segment_index"`
	SegmentCount  int     `json:"segment_count"`
	ProgressPct   int     `json:"progress_pct"`
	ActiveSegment *string `json:"active_segment,omitempty"`
	ScorePct      *int    `json:"score_pct,omitempty"`
}

// Project derives the dashboard view of a session. A nil lesson (not found,
// or not loaded yet) projects as an in-progress teach node with zero
// segments rather than an error.
func Project(session sessiondomain.Session, lesson *lessondomain.Lesson) GraphState {
	state := GraphState{
		SessionID:    session.ID,
		StudentID:    session.StudentID,
		LessonID:     session.LessonID,
		SegmentIndex: session.SegmentIndex,
		Node:         NodeTeach,
	}
	if lesson != nil {
		state.LessonTitle = lesson.Title
		state.SegmentCount = len(lesson.Segments)
	}

	switch {
	case session.Scored():
		state.Node = NodeComplete
		// The writer validates grades before persisting; a nonpositive max
		// here means a corrupt record, so leave the percentage unset.
		if *session.ScoreMax > 0 {
			pct := int(math.Round(100 * float64(*session.Score) / float64(*session.ScoreMax)))
			state.ScorePct = &pct
		}
	case lesson != nil && session.SegmentIndex >= state.SegmentCount && state.SegmentCount > 0:
		state.Node = NodeQuiz
	}

	if state.Node == NodeTeach && lesson != nil &&
		session.SegmentIndex >= 0 && session.SegmentIndex < state.SegmentCount {
		title := lesson.Segments[session.SegmentIndex].Title
		state.ActiveSegment = &title
	}

	state.ProgressPct = progress(session, state)
	return state
}

func progress(session sessiondomain.Session, state GraphState) int {
	if state.Node == NodeComplete {
		return 100
	}
	if state.SegmentCount == 0 {
		return 0
	}
	pct := 100 * session.SegmentIndex / state.SegmentCount
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Equal compares by value including the pointer fields.
func (g GraphState) Equal(other GraphState) bool {
	if g.ActiveSegment != nil || other.ActiveSegment != nil {
		if g.ActiveSegment == nil || other.ActiveSegment == nil || *g.ActiveSegment != *other.ActiveSegment {
			return false
		}
	}
	if g.ScorePct != nil || other.ScorePct != nil {
		if g.ScorePct == nil || other.ScorePct == nil || *g.ScorePct != *other.ScorePct {
			return false
		}
	}
	g.ActiveSegment, other.ActiveSegment = nil, nil
	g.ScorePct, other.ScorePct = nil, nil
	return g == other
}
