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

	"robotutor/internal/modules/session/domain"
	sessionout "robotutor/internal/modules/session/port/out"
	apperrors "robotutor/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

const sessionColumns = "id, student_id, lesson_id, segment_index, transcript_json, started_at, ended_at, score, score_max"

type SQLiteSessionStore struct {
	db *sql.DB
}

func NewSQLiteSessionStore(dbPath string) (sessionout.SessionStore, error) {
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
	store := &SQLiteSessionStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteSessionStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  lesson_id TEXT NOT NULL,
  segment_index INTEGER NOT NULL DEFAULT 0,
  transcript_json TEXT NOT NULL DEFAULT '[]',
  started_at TEXT NOT NULL,
  ended_at TEXT,
  score INTEGER,
  score_max INTEGER
);
CREATE INDEX IF NOT EXISTS idx_sessions_student ON sessions(student_id);
CREATE INDEX IF NOT EXISTS idx_sessions_open ON sessions(student_id, lesson_id) WHERE ended_at IS NULL;
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (s *SQLiteSessionStore) Save(ctx context.Context, session domain.Session) error {
	transcript, err := json.Marshal(session.Transcript)
	if err != nil {
		return fmt.Errorf("%w: encode transcript: %v", apperrors.ErrPersistence, err)
	}
	var endedAt any
	if session.EndedAt != nil {
		endedAt = session.EndedAt.Format(timeLayout)
	}
	const stmt = `
INSERT INTO sessions (` + sessionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  segment_index=excluded.segment_index,
  transcript_json=excluded.transcript_json,
  ended_at=excluded.ended_at,
  score=excluded.score,
  score_max=excluded.score_max;
`
	_, err = s.db.ExecContext(ctx, stmt,
		session.ID, session.StudentID, session.LessonID, session.SegmentIndex,
		string(transcript), session.StartedAt.Format(timeLayout), endedAt,
		session.Score, session.ScoreMax)
	if err != nil {
		return fmt.Errorf("%w: upsert session: %v", apperrors.ErrPersistence, err)
	}
	return nil
}

func (s *SQLiteSessionStore) Get(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, id)
	}
	return session, err
}

func (s *SQLiteSessionStore) FindOpen(ctx context.Context, studentID, lessonID string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+sessionColumns+` FROM sessions
WHERE student_id = ? AND lesson_id = ? AND ended_at IS NULL
ORDER BY started_at DESC LIMIT 1`, studentID, lessonID)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("%w: no open session for %s/%s", apperrors.ErrNotFound, studentID, lessonID)
	}
	return session, err
}

func (s *SQLiteSessionStore) List(ctx context.Context) ([]domain.Session, error) {
	return s.query(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC, id`)
}

func (s *SQLiteSessionStore) ListActive(ctx context.Context) ([]domain.Session, error) {
	return s.query(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE score IS NULL ORDER BY started_at DESC, id`)
}

func (s *SQLiteSessionStore) StudentStats(ctx context.Context, studentID string) (sessionout.StudentStats, error) {
	stats := sessionout.StudentStats{StudentID: studentID}
	var latest sql.NullString
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(started_at) FROM sessions WHERE student_id = ?`, studentID)
	if err := row.Scan(&stats.SessionsTotal, &latest); err != nil {
		return sessionout.StudentStats{}, fmt.Errorf("%w: student stats: %v", apperrors.ErrPersistence, err)
	}
	if latest.Valid {
		ts, err := time.Parse(timeLayout, latest.String)
		if err != nil {
			return sessionout.StudentStats{}, fmt.Errorf("%w: parse latest session time: %v", apperrors.ErrPersistence, err)
		}
		stats.LatestSession = &ts
	}

	var best, bestMax sql.NullInt64
	row = s.db.QueryRowContext(ctx, `
SELECT score, score_max FROM sessions
WHERE student_id = ? AND score IS NOT NULL AND score_max > 0
ORDER BY 1.0 * score / score_max DESC, started_at DESC LIMIT 1`, studentID)
	if err := row.Scan(&best, &bestMax); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return sessionout.StudentStats{}, fmt.Errorf("%w: best score: %v", apperrors.ErrPersistence, err)
	}
	if best.Valid && bestMax.Valid {
		score, scoreMax := int(best.Int64), int(bestMax.Int64)
		stats.BestScore = &score
		stats.BestScoreMax = &scoreMax
	}
	return stats, nil
}

func (s *SQLiteSessionStore) query(ctx context.Context, stmt string) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %v", apperrors.ErrPersistence, err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.Session, error) {
	var session domain.Session
	var transcript, startedAt string
	var endedAt sql.NullString
	var score, scoreMax sql.NullInt64
	err := row.Scan(&session.ID, &session.StudentID, &session.LessonID, &session.SegmentIndex,
		&transcript, &startedAt, &endedAt, &score, &scoreMax)
	if err != nil {
		return domain.Session{}, err
	}
	if err := json.Unmarshal([]byte(transcript), &session.Transcript); err != nil {
		return domain.Session{}, fmt.Errorf("%w: decode transcript %s: %v", apperrors.ErrPersistence, session.ID, err)
	}
	session.StartedAt, err = time.Parse(timeLayout, startedAt)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: parse session timestamp %s: %v", apperrors.ErrPersistence, session.ID, err)
	}
	if endedAt.Valid {
		ended, err := time.Parse(timeLayout, endedAt.String)
		if err != nil {
			return domain.Session{}, fmt.Errorf("%w: parse session end %s: %v", apperrors.ErrPersistence, session.ID, err)
		}
		session.EndedAt = &ended
	}
	if score.Valid {
		v := int(score.Int64)
		session.Score = &v
	}
	if scoreMax.Valid {
		v := int(scoreMax.Int64)
		session.ScoreMax = &v
	}
	return session, nil
}
