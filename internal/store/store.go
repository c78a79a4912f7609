// Package store is the SQLite data access layer: applicants,
// verifications, selection records, and batch bookkeeping.
package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/modurecruit/snspick/internal/idgen"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store wraps the service database.
type Store struct {
	DB    *sql.DB
	newID idgen.Generator
}

// New creates a Store from an already-opened database connection.
func New(db *sql.DB) *Store {
	return &Store{DB: db, newID: idgen.Default}
}

// WithIDGenerator overrides the ID strategy (tests use a deterministic one).
func (s *Store) WithIDGenerator(gen idgen.Generator) *Store {
	s.newID = gen
	return s
}

// Init applies the schema and fails out any batch left running by a
// previous process, so an interrupted run never blocks the next one.
func (s *Store) Init() error {
	if _, err := s.DB.Exec(Schema); err != nil {
		return err
	}
	_, err := s.DB.Exec(
		`UPDATE batch_processes SET status = ?, errors_json = ?, finished_at = ?
		WHERE status = ?`,
		StatusFailed, `["interrupted by restart"]`, time.Now().UnixMilli(), StatusRunning,
	)
	return err
}
