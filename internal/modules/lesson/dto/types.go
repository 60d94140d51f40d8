package dto

import "time"

type PlanInput struct {
	SourcePath string
	Title      string
}

type PlanOutput struct {
	LessonID     string
	Title        string
	SegmentCount int
}

type LessonOutput struct {
	ID           string
	Title        string
	SegmentCount int
	CreatedAt    time.Time
}

type SegmentOutput struct {
	Title         string
	Minutes       int
	Script        string
	CheckQuestion string
	Emotion       string
	Motion        string
	Sources       []string
}

type LessonDetailOutput struct {
	ID             string
	Title          string
	Segments       []SegmentOutput
	Objectives     []string
	NextLessonHint string
	CreatedAt      time.Time
}
