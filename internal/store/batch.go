package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StartBatch creates a new running batch row and returns it.
func (s *Store) StartBatch(ctx context.Context, total int) (*BatchProcess, error) {
	b := &BatchProcess{
		ID:         s.newID(),
		Total:      total,
		Status:     StatusRunning,
		ErrorsJSON: "[]",
		StartedAt:  time.Now().UnixMilli(),
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO batch_processes (id, total, processed, selected, rejected, status, errors_json, started_at)
		VALUES (?, ?, 0, 0, 0, ?, ?, ?)`,
		b.ID, b.Total, b.Status, b.ErrorsJSON, b.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("start batch: %w", err)
	}
	return b, nil
}

// FinishBatch writes the terminal state of a batch. Status is "completed"
// when errs is empty, "failed" otherwise; either way the counters reflect
// everything processed.
func (s *Store) FinishBatch(ctx context.Context, b *BatchProcess, errs []string) error {
	b.Status = StatusCompleted
	if len(errs) > 0 {
		b.Status = StatusFailed
	}
	errJSON, err := json.Marshal(errs)
	if err != nil {
		errJSON = []byte("[]")
	}
	b.ErrorsJSON = string(errJSON)
	now := time.Now().UnixMilli()
	b.FinishedAt = &now

	_, err = s.DB.ExecContext(ctx,
		`UPDATE batch_processes SET total = ?, processed = ?, selected = ?, rejected = ?,
		status = ?, errors_json = ?, finished_at = ? WHERE id = ?`,
		b.Total, b.Processed, b.Selected, b.Rejected, b.Status, b.ErrorsJSON, b.FinishedAt, b.ID,
	)
	if err != nil {
		return fmt.Errorf("finish batch %s: %w", b.ID, err)
	}
	return nil
}

// GetBatch retrieves a batch by ID.
func (s *Store) GetBatch(ctx context.Context, id string) (*BatchProcess, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, total, processed, selected, rejected, status, errors_json, started_at, finished_at
		FROM batch_processes WHERE id = ?`, id)
	b := &BatchProcess{}
	err := row.Scan(&b.ID, &b.Total, &b.Processed, &b.Selected, &b.Rejected,
		&b.Status, &b.ErrorsJSON, &b.StartedAt, &b.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", id, err)
	}
	return b, nil
}

// ListBatches returns batches, newest first, up to limit (0 = all).
func (s *Store) ListBatches(ctx context.Context, limit int) ([]*BatchProcess, error) {
	q := `SELECT id, total, processed, selected, rejected, status, errors_json, started_at, finished_at
		FROM batch_processes ORDER BY started_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.DB.QueryContext(ctx, q+` LIMIT ?`, limit)
	} else {
		rows, err = s.DB.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var out []*BatchProcess
	for rows.Next() {
		b := &BatchProcess{}
		if err := rows.Scan(&b.ID, &b.Total, &b.Processed, &b.Selected, &b.Rejected,
			&b.Status, &b.ErrorsJSON, &b.StartedAt, &b.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// RunningBatch returns the currently running batch, or ErrNotFound.
func (s *Store) RunningBatch(ctx context.Context) (*BatchProcess, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, total, processed, selected, rejected, status, errors_json, started_at, finished_at
		FROM batch_processes WHERE status = ? ORDER BY started_at DESC LIMIT 1`, StatusRunning)
	b := &BatchProcess{}
	err := row.Scan(&b.ID, &b.Total, &b.Processed, &b.Selected, &b.Rejected,
		&b.Status, &b.ErrorsJSON, &b.StartedAt, &b.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("running batch: %w", err)
	}
	return b, nil
}
