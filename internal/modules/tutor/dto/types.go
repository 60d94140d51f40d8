package dto

type TeachInput struct {
	StudentID string
	LessonID  string
}

type TeachOutput struct {
	SessionID string `json:"session_id"`
	Resumed   bool   `json:"resumed"`
	Score     int    `json:"score"`
	ScoreMax  int    `json:"score_max"`
	NextStep  string `json:"next_step,omitempty"`
}
