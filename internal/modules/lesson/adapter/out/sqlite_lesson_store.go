package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"robotutor/internal/modules/lesson/domain"
	lessonout "robotutor/internal/modules/lesson/port/out"
	apperrors "robotutor/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type SQLiteLessonStore struct {
	db *sql.DB
}

// planDoc is the stored shape of everything beyond the indexed columns.
type planDoc struct {
	Segments       []domain.Segment `json:"segments"`
	Objectives     []string         `json:"objectives,omitempty"`
	NextLessonHint string           `json:"next_lesson_hint,omitempty"`
}

func NewSQLiteLessonStore(dbPath string) (lessonout.LessonStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	store := &SQLiteLessonStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// WAL keeps the gateway's reads from blocking on the state machine's writes.
func openDatabase(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	return db, nil
}

func (s *SQLiteLessonStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS lessons (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  plan_json TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create lessons table: %w", err)
	}
	return nil
}

func (s *SQLiteLessonStore) Save(ctx context.Context, lesson domain.Lesson) error {
	plan, err := json.Marshal(planDoc{
		Segments:       lesson.Segments,
		Objectives:     lesson.Objectives,
		NextLessonHint: lesson.NextLessonHint,
	})
	if err != nil {
		return fmt.Errorf("encode lesson plan: %w", err)
	}
	const stmt = `
INSERT INTO lessons (id, title, plan_json, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  plan_json=excluded.plan_json;
`
	if _, err := s.db.ExecContext(ctx, stmt, lesson.ID, lesson.Title, string(plan), lesson.CreatedAt.Format(timeLayout)); err != nil {
		return fmt.Errorf("upsert lesson: %w", err)
	}
	return nil
}

func (s *SQLiteLessonStore) Get(ctx context.Context, id string) (domain.Lesson, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, plan_json, created_at FROM lessons WHERE id = ?`, id)
	lesson, err := scanLesson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lesson{}, fmt.Errorf("%w: lesson %s", apperrors.ErrNotFound, id)
	}
	return lesson, err
}

func (s *SQLiteLessonStore) List(ctx context.Context) ([]domain.Lesson, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, plan_json, created_at FROM lessons ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	lessons := []domain.Lesson{}
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (domain.Lesson, error) {
	var lesson domain.Lesson
	var plan, createdAt string
	if err := row.Scan(&lesson.ID, &lesson.Title, &plan, &createdAt); err != nil {
		return domain.Lesson{}, err
	}
	var doc planDoc
	if err := json.Unmarshal([]byte(plan), &doc); err != nil {
		return domain.Lesson{}, fmt.Errorf("decode lesson plan %s: %w", lesson.ID, err)
	}
	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("parse lesson timestamp %s: %w", lesson.ID, err)
	}
	lesson.Segments = doc.Segments
	lesson.Objectives = doc.Objectives
	lesson.NextLessonHint = doc.NextLessonHint
	lesson.CreatedAt = ts
	return lesson, nil
}
