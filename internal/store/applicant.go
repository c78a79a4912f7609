package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertApplicant inserts or refreshes an applicant row.
func (s *Store) UpsertApplicant(ctx context.Context, a *Applicant) error {
	now := time.Now().UnixMilli()
	if a.CreatedAt == 0 {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO applicants (email, name, naver_blog_url, instagram_url, threads_url, row_index, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			naver_blog_url = excluded.naver_blog_url,
			instagram_url = excluded.instagram_url,
			threads_url = excluded.threads_url,
			row_index = excluded.row_index,
			updated_at = excluded.updated_at`,
		a.Email, a.Name, a.NaverBlogURL, a.InstagramURL, a.ThreadsURL,
		a.RowIndex, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert applicant %s: %w", a.Email, err)
	}
	return nil
}

// GetApplicant retrieves an applicant by email.
func (s *Store) GetApplicant(ctx context.Context, email string) (*Applicant, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT email, name, naver_blog_url, instagram_url, threads_url, row_index, created_at, updated_at
		FROM applicants WHERE email = ?`, email)
	a := &Applicant{}
	err := row.Scan(&a.Email, &a.Name, &a.NaverBlogURL, &a.InstagramURL,
		&a.ThreadsURL, &a.RowIndex, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get applicant %s: %w", email, err)
	}
	return a, nil
}

// ListApplicants returns all applicants in sheet-row order (unsourced rows
// last, by email).
func (s *Store) ListApplicants(ctx context.Context) ([]*Applicant, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT email, name, naver_blog_url, instagram_url, threads_url, row_index, created_at, updated_at
		FROM applicants
		ORDER BY CASE WHEN row_index = 0 THEN 1 ELSE 0 END, row_index, email`)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	defer rows.Close()

	var out []*Applicant
	for rows.Next() {
		a := &Applicant{}
		if err := rows.Scan(&a.Email, &a.Name, &a.NaverBlogURL, &a.InstagramURL,
			&a.ThreadsURL, &a.RowIndex, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
