// Package dto carries monitor views across module and wire boundaries.
// The gateway emits these shapes verbatim as socket.io event payloads.
package dto

type GraphStateOutput struct {
	SessionID     string  `json:"session_id"`
	StudentID     string  `json:"student_id"`
	LessonID      string  `json:"lesson_id"`
	LessonTitle   string  `json:"lesson_title,omitempty"`
	Node          string  `json:"node"`
	SegmentIndex  int     `json:"segment_index"`
	SegmentCount  int     `json:"segment_count"`
	ProgressPct   int     `json:"progress_pct"`
	ActiveSegment *string `json:"active_segment,omitempty"`
	ScorePct      *int    `json:"score_pct,omitempty"`
}

type DashboardStatsOutput struct {
	Lessons         int     `json:"lessons"`
	Sessions        int     `json:"sessions"`
	Students        int     `json:"students"`
	Completed       int     `json:"completed"`
	AverageScorePct float64 `json:"average_score_pct"`
}

type SessionNotFoundOutput struct {
	SessionID string `json:"session_id"`
}
