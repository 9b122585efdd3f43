package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lowaak/hiit-timer/internal/workout"
)

// DefaultListLimit is how many workouts LoadLast returns when asked for none
const DefaultListLimit = 50

// recordTimeout bounds a save made from inside the workout clock
const recordTimeout = 5 * time.Second

const selectColumns = `SELECT id, name, completed_at_ms,
	work_seconds, rest_seconds, round_reset_seconds, get_ready_seconds, rounds, exercises,
	completed_rounds, completed_exercises, total_duration_seconds
	FROM workouts`

// Stats aggregates every stored workout
type Stats struct {
	TotalWorkouts        int64 `json:"total_workouts" yaml:"total_workouts"`
	TotalDurationSeconds int64 `json:"total_duration_seconds" yaml:"total_duration_seconds"`
	AverageSeconds       int64 `json:"average_seconds" yaml:"average_seconds"`
}

// Save stores a finished workout. A missing id is generated and an empty
// name becomes the default one.
func (s *Store) Save(ctx context.Context, summary workout.Summary) (workout.Summary, error) {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	if summary.Name == "" {
		summary.Name = workout.DefaultWorkoutName
	}
	cfg := summary.Config

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workouts (id, name, completed_at_ms,
		 work_seconds, rest_seconds, round_reset_seconds, get_ready_seconds, rounds, exercises,
		 completed_rounds, completed_exercises, total_duration_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID, summary.Name, summary.Date.UnixMilli(),
		cfg.WorkSeconds, cfg.RestSeconds, cfg.RoundResetSeconds, cfg.GetReadySeconds, cfg.Rounds, cfg.Exercises,
		summary.CompletedRounds, summary.CompletedExercises, summary.TotalDurationSeconds)
	if err != nil {
		return summary, fmt.Errorf("inserting workout %s: %w", summary.ID, err)
	}
	return summary, nil
}

// RecordWorkout lets the store act as the clock's recorder
func (s *Store) RecordWorkout(summary workout.Summary) error {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	saved, err := s.Save(ctx, summary)
	if err != nil {
		return err
	}
	s.logger.Printf("HistoryStore: Saved %q (%s) as %s", saved.Name, saved.FormattedDuration(), saved.ID)
	return nil
}

// LoadLast returns up to n workouts, most recent first
func (s *Store) LoadLast(ctx context.Context, n int) ([]workout.Summary, error) {
	if n <= 0 {
		n = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY completed_at_ms DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []workout.Summary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workouts: %w", err)
	}
	return result, nil
}

// Get returns one workout, or ErrNotFound
func (s *Store) Get(ctx context.Context, id string) (workout.Summary, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	summary, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return workout.Summary{}, ErrNotFound
	}
	return summary, err
}

// Rename changes a stored workout's name. An empty name restores the default.
func (s *Store) Rename(ctx context.Context, id, name string) error {
	if name == "" {
		name = workout.DefaultWorkoutName
	}
	res, err := s.db.ExecContext(ctx, `UPDATE workouts SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("renaming workout %s: %w", id, err)
	}
	return requireAffected(res, id)
}

// Delete removes a stored workout
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting workout %s: %w", id, err)
	}
	return requireAffected(res, id)
}

// Stats returns totals over the whole history
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_duration_seconds), 0) FROM workouts`,
	).Scan(&stats.TotalWorkouts, &stats.TotalDurationSeconds)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregating workouts: %w", err)
	}
	if stats.TotalWorkouts > 0 {
		stats.AverageSeconds = stats.TotalDurationSeconds / stats.TotalWorkouts
	}
	return stats, nil
}

// ExportYAML writes workouts as a YAML document
func ExportYAML(w io.Writer, summaries []workout.Summary) error {
	doc := struct {
		Workouts []workout.Summary `yaml:"workouts"`
	}{Workouts: summaries}
	if doc.Workouts == nil {
		doc.Workouts = []workout.Summary{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding workouts: %w", err)
	}
	return enc.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (workout.Summary, error) {
	var (
		summary     workout.Summary
		completedMs int64
		cfg         workout.Config
	)
	err := row.Scan(&summary.ID, &summary.Name, &completedMs,
		&cfg.WorkSeconds, &cfg.RestSeconds, &cfg.RoundResetSeconds, &cfg.GetReadySeconds, &cfg.Rounds, &cfg.Exercises,
		&summary.CompletedRounds, &summary.CompletedExercises, &summary.TotalDurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return summary, err
	}
	if err != nil {
		return summary, fmt.Errorf("scanning workout: %w", err)
	}
	summary.Date = time.UnixMilli(completedMs).UTC()
	summary.Config = cfg
	return summary, nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking workout %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
