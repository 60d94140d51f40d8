package domain

import (
	"fmt"
	"strings"
	"time"
)

const SchemaVersion = 1

// Segment is one timed unit of lesson content. The emotion and motion tags
// drive the presentation device while the script is spoken.
type Segment struct {
	Title         string   `json:"title"`
	Minutes       int      `json:"minutes"`
	Script        string   `json:"script"`
	CheckQuestion string   `json:"check_question"`
	Emotion       string   `json:"emotion"`
	Motion        string   `json:"motion"`
	Sources       []string `json:"sources,omitempty"`
}

// Lesson is immutable once stored; sessions reference it by id.
type Lesson struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Segments       []Segment `json:"segments"`
	Objectives     []string  `json:"objectives,omitempty"`
	NextLessonHint string    `json:"next_lesson_hint,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (s Segment) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("segment title is required")
	}
	if strings.TrimSpace(s.Script) == "" {
		return fmt.Errorf("segment script is required")
	}
	if s.Minutes < 0 {
		return fmt.Errorf("segment minutes must be non-negative")
	}
	return nil
}

func (l Lesson) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("lesson id is required")
	}
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("lesson title is required")
	}
	if len(l.Segments) == 0 {
		return fmt.Errorf("lesson needs at least one segment")
	}
	for i, seg := range l.Segments {
		if err := seg.Validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return nil
}

// Scripts returns the segment scripts in order, the grounding handed to the
// content collaborator for quiz generation.
func (l Lesson) Scripts() []string {
	out := make([]string, 0, len(l.Segments))
	for _, seg := range l.Segments {
		out = append(out, seg.Script)
	}
	return out
}
