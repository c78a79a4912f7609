package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SaveSelectionRecord inserts or replaces the selection record for an
// applicant. The unique index on applicant_email makes a re-run of the
// batch overwrite the previous decision.
func (s *Store) SaveSelectionRecord(ctx context.Context, r *SelectionRecord) error {
	now := time.Now().UnixMilli()
	if r.ID == "" {
		r.ID = s.newID()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = StatusPending
	}
	if r.MeetsJSON == "" {
		r.MeetsJSON = "{}"
	}
	if r.QualifyingJSON == "" {
		r.QualifyingJSON = "[]"
	}
	if r.SnapshotJSON == "" {
		r.SnapshotJSON = "[]"
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO selection_records (id, applicant_email, selected, reason, meets_json,
		qualifying_json, snapshot_json, status, sheet_synced, email_sent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(applicant_email) DO UPDATE SET
			selected = excluded.selected,
			reason = excluded.reason,
			meets_json = excluded.meets_json,
			qualifying_json = excluded.qualifying_json,
			snapshot_json = excluded.snapshot_json,
			status = excluded.status,
			sheet_synced = excluded.sheet_synced,
			email_sent = excluded.email_sent,
			updated_at = excluded.updated_at`,
		r.ID, r.ApplicantEmail, r.Selected, r.Reason, r.MeetsJSON,
		r.QualifyingJSON, r.SnapshotJSON, r.Status, r.SheetSynced, r.EmailSent,
		r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save selection record for %s: %w", r.ApplicantEmail, err)
	}
	return nil
}

// GetSelectionRecord retrieves the selection record for an applicant.
func (s *Store) GetSelectionRecord(ctx context.Context, email string) (*SelectionRecord, error) {
	row := s.DB.QueryRowContext(ctx, selectionColumns+` WHERE applicant_email = ?`, email)
	return scanSelection(row)
}

// ListSelectionRecords returns all selection records, newest first.
func (s *Store) ListSelectionRecords(ctx context.Context) ([]*SelectionRecord, error) {
	rows, err := s.DB.QueryContext(ctx, selectionColumns+` ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list selection records: %w", err)
	}
	defer rows.Close()

	var out []*SelectionRecord
	for rows.Next() {
		r, err := scanSelectionRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkSelectionStatus updates the processing status of a record.
func (s *Store) MarkSelectionStatus(ctx context.Context, email, status string) error {
	return s.markSelection(ctx, email, `status = ?`, status)
}

// MarkSheetSynced flags the record as written back to the spreadsheet.
func (s *Store) MarkSheetSynced(ctx context.Context, email string) error {
	return s.markSelection(ctx, email, `sheet_synced = 1`)
}

// MarkEmailSent flags the record's notification as delivered.
func (s *Store) MarkEmailSent(ctx context.Context, email string) error {
	return s.markSelection(ctx, email, `email_sent = 1`)
}

func (s *Store) markSelection(ctx context.Context, email, set string, args ...any) error {
	args = append(args, time.Now().UnixMilli(), email)
	res, err := s.DB.ExecContext(ctx,
		`UPDATE selection_records SET `+set+`, updated_at = ? WHERE applicant_email = ?`, args...)
	if err != nil {
		return fmt.Errorf("update selection record for %s: %w", email, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeSelectionRecords deletes all selection records (admin operation).
// Returns rows deleted.
func (s *Store) PurgeSelectionRecords(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM selection_records`)
	if err != nil {
		return 0, fmt.Errorf("purge selection records: %w", err)
	}
	return res.RowsAffected()
}

const selectionColumns = `SELECT id, applicant_email, selected, reason, meets_json,
	qualifying_json, snapshot_json, status, sheet_synced, email_sent, created_at, updated_at
	FROM selection_records`

func scanSelection(row *sql.Row) (*SelectionRecord, error) {
	r := &SelectionRecord{}
	err := row.Scan(&r.ID, &r.ApplicantEmail, &r.Selected, &r.Reason, &r.MeetsJSON,
		&r.QualifyingJSON, &r.SnapshotJSON, &r.Status, &r.SheetSynced, &r.EmailSent,
		&r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan selection record: %w", err)
	}
	return r, nil
}

func scanSelectionRows(rows *sql.Rows) (*SelectionRecord, error) {
	r := &SelectionRecord{}
	err := rows.Scan(&r.ID, &r.ApplicantEmail, &r.Selected, &r.Reason, &r.MeetsJSON,
		&r.QualifyingJSON, &r.SnapshotJSON, &r.Status, &r.SheetSynced, &r.EmailSent,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan selection record: %w", err)
	}
	return r, nil
}
