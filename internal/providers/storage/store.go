package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/logging"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("storage: store is closed")

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS quiz_progress (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	widget_id    TEXT NOT NULL,
	lesson       TEXT NOT NULL DEFAULT '',
	quiz_id      TEXT NOT NULL DEFAULT '',
	score        INTEGER NOT NULL,
	total        INTEGER NOT NULL,
	tier         TEXT NOT NULL,
	completed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quiz_progress_lesson ON quiz_progress(lesson, quiz_id);
`

// Attempt is one completed quiz.
type Attempt struct {
	ID          int64     `json:"id"`
	WidgetID    string    `json:"widget_id"`
	Lesson      string    `json:"lesson,omitempty"`
	QuizID      string    `json:"quiz_id,omitempty"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Tier        string    `json:"tier"`
	CompletedAt time.Time `json:"completed_at"`
}

// Percent returns the attempt's score as a percentage.
func (a Attempt) Percent() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Score) / float64(a.Total) * 100
}

// Filter narrows progress queries. Zero values match everything.
type Filter struct {
	Lesson string
	QuizID string
	Limit  int
}

// Summary aggregates quiz attempts.
type Summary struct {
	Attempts      int            `json:"attempts"`
	Perfect       int            `json:"perfect"`
	MeanPercent   float64        `json:"mean_percent"`
	StdDevPercent float64        `json:"stddev_percent"`
	MedianPercent float64        `json:"median_percent"`
	BestPercent   float64        `json:"best_percent"`
	ByTier        map[string]int `json:"by_tier"`
}

// Store persists settings and quiz progress in SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
// Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: database path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open database: %w", err)
	}
	// One connection keeps :memory: databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: failed to connect: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: failed to apply schema: %w", err)
	}

	s := &Store{db: db, path: path, logger: logging.OrNop(logger)}
	s.logger.Info("storage opened", zap.String("path", path))
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetSetting returns the value stored under key.
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: get setting %q: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage: set setting %q: %w", key, err)
	}
	return nil
}

// DeleteSetting removes key. Missing keys are not an error.
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("storage: delete setting %q: %w", key, err)
	}
	return nil
}

// Settings returns every stored setting.
func (s *Store) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("storage: list settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("storage: scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// RecordAttempt stores a completed quiz and returns it with its ID set.
func (s *Store) RecordAttempt(ctx context.Context, a Attempt) (Attempt, error) {
	if a.WidgetID == "" {
		return Attempt{}, fmt.Errorf("storage: attempt needs a widget id")
	}
	if a.Total <= 0 || a.Score < 0 || a.Score > a.Total {
		return Attempt{}, fmt.Errorf("storage: invalid score %d/%d", a.Score, a.Total)
	}
	if a.CompletedAt.IsZero() {
		a.CompletedAt = time.Now()
	}
	a.CompletedAt = a.CompletedAt.UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO quiz_progress (widget_id, lesson, quiz_id, score, total, tier, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.WidgetID, a.Lesson, a.QuizID, a.Score, a.Total, a.Tier, a.CompletedAt)
	if err != nil {
		return Attempt{}, fmt.Errorf("storage: record attempt: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return Attempt{}, fmt.Errorf("storage: record attempt: %w", err)
	}
	return a, nil
}

// Attempts lists attempts matching f, newest first.
func (s *Store) Attempts(ctx context.Context, f Filter) ([]Attempt, error) {
	query, args := attemptsQuery(f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.WidgetID, &a.Lesson, &a.QuizID, &a.Score, &a.Total, &a.Tier, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("storage: scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func attemptsQuery(f Filter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if f.Lesson != "" {
		where = append(where, "lesson = ?")
		args = append(args, f.Lesson)
	}
	if f.QuizID != "" {
		where = append(where, "quiz_id = ?")
		args = append(args, f.QuizID)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, widget_id, lesson, quiz_id, score, total, tier, completed_at FROM quiz_progress`)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY completed_at DESC, id DESC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}
	return sb.String(), args
}

// Summary aggregates the attempts matching f (the limit is ignored).
func (s *Store) Summary(ctx context.Context, f Filter) (Summary, error) {
	f.Limit = 0
	attempts, err := s.Attempts(ctx, f)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(attempts), nil
}

// Summarize computes score statistics over attempts.
func Summarize(attempts []Attempt) Summary {
	sum := Summary{Attempts: len(attempts), ByTier: make(map[string]int)}
	if len(attempts) == 0 {
		return sum
	}

	percents := make([]float64, len(attempts))
	for i, a := range attempts {
		percents[i] = a.Percent()
		sum.ByTier[a.Tier]++
		if a.Score == a.Total {
			sum.Perfect++
		}
	}
	sort.Float64s(percents)

	sum.MeanPercent = stat.Mean(percents, nil)
	if len(percents) > 1 {
		sum.StdDevPercent = stat.StdDev(percents, nil)
	}
	sum.MedianPercent = stat.Quantile(0.5, stat.Empirical, percents, nil)
	sum.BestPercent = percents[len(percents)-1]
	return sum
}
