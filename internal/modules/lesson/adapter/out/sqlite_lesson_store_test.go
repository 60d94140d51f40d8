package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	out "robotutor/internal/modules/lesson/adapter/out"
	"robotutor/internal/modules/lesson/domain"
	apperrors "robotutor/internal/platform/errors"
)

func sampleLesson() domain.Lesson {
	return domain.Lesson{
		ID:    "lesson-1",
		Title: "Photosynthesis",
		Segments: []domain.Segment{
			{Title: "Light", Minutes: 2, Script: "Plants capture light.", CheckQuestion: "What captures light?", Emotion: "happy", Motion: "nod"},
			{Title: "Water", Minutes: 3, Script: "Roots pull water up.", CheckQuestion: "Where from?", Emotion: "curious", Motion: "point"},
		},
		Objectives:     []string{"understand light capture"},
		NextLessonHint: "respiration",
		CreatedAt:      time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestLessonRoundTrip(t *testing.T) {
	t.Parallel()
	store, err := out.NewSQLiteLessonStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	lesson := sampleLesson()
	if err := store.Save(ctx, lesson); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "lesson-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != lesson.Title || len(got.Segments) != 2 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if got.Segments[1].CheckQuestion != "Where from?" || got.Segments[1].Emotion != "curious" {
		t.Fatalf("segment fields not preserved: %+v", got.Segments[1])
	}
	if got.NextLessonHint != "respiration" || len(got.Objectives) != 1 {
		t.Fatalf("plan extras not preserved: %+v", got)
	}
	if !got.CreatedAt.Equal(lesson.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, lesson.CreatedAt)
	}

	if _, err := store.Get(ctx, "ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound for missing lesson, got %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("list length = %d, want 1", len(all))
	}
}
