// Package dto carries session data across module boundaries.
package dto

import "time"

type SessionSummaryOutput struct {
	ID           string     `json:"id"`
	StudentID    string     `json:"student_id"`
	LessonID     string     `json:"lesson_id"`
	SegmentIndex int        `json:"segment_index"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	Score        *int       `json:"score,omitempty"`
	ScoreMax     *int       `json:"score_max,omitempty"`
}

type TranscriptEntryOutput struct {
	Role    string `json:"role"`
	Text    string `json:"text"`
	Segment int    `json:"segment,omitempty"`
	Error   string `json:"error,omitempty"`
}

type SessionDetailOutput struct {
	SessionSummaryOutput
	Transcript []TranscriptEntryOutput `json:"transcript"`
}

type StudentStatsOutput struct {
	StudentID     string     `json:"student_id"`
	SessionsTotal int        `json:"sessions_total"`
	BestScore     *int       `json:"best_score,omitempty"`
	BestScoreMax  *int       `json:"best_score_max,omitempty"`
	LatestSession *time.Time `json:"latest_session,omitempty"`
}
