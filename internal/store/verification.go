package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// InsertVerification persists a verification result. Verifications are
// write-once; a new run inserts a new row and LatestVerification picks the
// freshest.
func (s *Store) InsertVerification(ctx context.Context, v *VerificationRecord) error {
	if v.ID == "" {
		v.ID = s.newID()
	}
	if v.VerifiedAt == 0 {
		v.VerifiedAt = time.Now().UnixMilli()
	}
	if v.ProfilesJSON == "" {
		v.ProfilesJSON = "[]"
	}
	if v.MeetsJSON == "" {
		v.MeetsJSON = "{}"
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO verifications (id, applicant_email, profiles_json, meets_json, meets_all, score, verified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.ApplicantEmail, v.ProfilesJSON, v.MeetsJSON, v.MeetsAll, v.Score, v.VerifiedAt,
	)
	if err != nil {
		return fmt.Errorf("insert verification for %s: %w", v.ApplicantEmail, err)
	}
	return nil
}

// LatestVerification returns the most recent verification for an
// applicant, or ErrNotFound.
func (s *Store) LatestVerification(ctx context.Context, email string) (*VerificationRecord, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, applicant_email, profiles_json, meets_json, meets_all, score, verified_at
		FROM verifications WHERE applicant_email = ?
		ORDER BY verified_at DESC LIMIT 1`, email)
	v := &VerificationRecord{}
	err := row.Scan(&v.ID, &v.ApplicantEmail, &v.ProfilesJSON, &v.MeetsJSON,
		&v.MeetsAll, &v.Score, &v.VerifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest verification for %s: %w", email, err)
	}
	return v, nil
}

// PruneVerifications deletes verification rows older than cutoff
// (Unix milliseconds), keeping the table bounded. Returns rows deleted.
func (s *Store) PruneVerifications(ctx context.Context, cutoff int64) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM verifications WHERE verified_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune verifications: %w", err)
	}
	return res.RowsAffected()
}
