package out

import (
	"context"
	"fmt"

	"robotutor/internal/modules/lesson/domain"
	lessonout "robotutor/internal/modules/lesson/port/out"
	"robotutor/internal/tutorplugin"
)

// PluginPlanner plans lessons through the content collaborator binary.
// Each call launches the guest, runs one RPC and kills the process.
type PluginPlanner struct {
	binary string
}

func NewPluginPlanner(binary string) lessonout.Planner {
	return &PluginPlanner{binary: binary}
}

func (p *PluginPlanner) PlanLesson(ctx context.Context, title, sourceName, sourceText string) (domain.Lesson, error) {
	client, closer, err := tutorplugin.Open(p.binary)
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("open content plugin: %w", err)
	}
	defer closer()

	resp, err := client.PlanLesson(ctx, &tutorplugin.PlanLessonRequest{
		Title:      title,
		SourceName: sourceName,
		SourceText: sourceText,
	})
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("plan lesson rpc: %w", err)
	}

	lesson := domain.Lesson{
		Title:          resp.Title,
		Objectives:     resp.Objectives,
		NextLessonHint: resp.NextLessonHint,
	}
	if lesson.Title == "" {
		lesson.Title = title
	}
	lesson.Segments = make([]domain.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		lesson.Segments = append(lesson.Segments, domain.Segment{
			Title:         seg.Title,
			Minutes:       seg.Minutes,
			Script:        seg.Script,
			CheckQuestion: seg.CheckQuestion,
			Emotion:       seg.Emotion,
			Motion:        seg.Motion,
			Sources:       seg.Sources,
		})
	}
	return lesson, nil
}
