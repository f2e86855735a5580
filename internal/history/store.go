package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/umlgen/internal/db"
	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/pipeline"
)

// DefaultLimit caps List when no limit is given.
const DefaultLimit = 50

// Store persists generation attempts.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts an entry. If entry.ID is empty a UUID is generated.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	status := "succeeded"
	if entry.Status == diagram.StatusFailed {
		status = "failed"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generations (
			id, request_id, diagram_type, status, outcome, model,
			input_tokens, output_tokens, cost_usd, duration_ms, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		int64(entry.RequestID),
		string(entry.Type),
		status,
		entry.Outcome,
		entry.Model,
		entry.InputTokens,
		entry.OutputTokens,
		entry.CostUSD,
		entry.Duration.Milliseconds(),
		entry.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting generation: %w", err)
	}
	return nil
}

// RecordAttempt stores a pipeline attempt.
func (s *Store) RecordAttempt(ctx context.Context, a pipeline.Attempt) error {
	e := Entry{
		RequestID:    a.RequestID,
		Type:         a.Type,
		Status:       a.Status,
		Outcome:      a.Result,
		Model:        a.Model,
		InputTokens:  a.InputTokens,
		OutputTokens: a.OutputTokens,
		CostUSD:      a.CostUSD,
		Duration:     a.Duration,
	}
	if a.Err != nil {
		e.Error = a.Err.Error()
	}
	return s.Record(ctx, e)
}

// List returns the most recent entries first. limit <= 0 uses DefaultLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, diagram_type, status, outcome, model,
			   input_tokens, output_tokens, cost_usd, duration_ms, error, created_at
		FROM generations ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying generations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e               Entry
			requestID       int64
			typ, status, ts string
			durationMS      int64
		)
		err := rows.Scan(&e.ID, &requestID, &typ, &status, &e.Outcome, &e.Model,
			&e.InputTokens, &e.OutputTokens, &e.CostUSD, &durationMS, &e.Error, &ts)
		if err != nil {
			return nil, fmt.Errorf("scanning generation: %w", err)
		}
		e.RequestID = uint64(requestID)
		e.Type = diagram.Type(typ)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		if err := e.Status.UnmarshalText([]byte(status)); err != nil {
			e.Status = diagram.StatusIdle
		}
		if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
			e.CreatedAt = t
		} else if t, parseErr := time.Parse(time.RFC3339Nano, ts); parseErr == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summary aggregates all recorded attempts.
func (s *Store) Summary(ctx context.Context) (*Summary, error) {
	sum := &Summary{ByType: map[string]int{}}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			   COALESCE(SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END), 0),
			   COALESCE(SUM(CASE WHEN outcome = 'absent' THEN 1 ELSE 0 END), 0),
			   COALESCE(SUM(cost_usd), 0)
		FROM generations`).Scan(&sum.Total, &sum.Failures, &sum.Absent, &sum.CostUSD)
	if err != nil {
		return nil, fmt.Errorf("summarizing generations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT diagram_type, COUNT(*) FROM generations GROUP BY diagram_type`)
	if err != nil {
		return nil, fmt.Errorf("counting by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		sum.ByType[typ] = n
	}
	return sum, rows.Err()
}

// DeleteBefore removes entries older than the given time and returns the
// number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM generations WHERE created_at < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old generations: %w", err)
	}
	return res.RowsAffected()
}
