// Package store persists recording metadata and the resolved billing
// mapping. The engine itself never touches storage; this is the
// collaborator that turns MatchResults into foreign keys.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"call-recon-go/internal/types"
)

// Store wraps SQLite access for recordings and their matches.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS recordings (
			filename TEXT PRIMARY KEY,
			site TEXT,
			phone_key TEXT,
			minute_sec INTEGER,
			transcript TEXT,
			call_id TEXT,
			delta_sec INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_recordings_call_id ON recordings(call_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRecordings inserts new recordings; already-known filenames are
// left untouched so re-uploaded batches stay idempotent.
func (s *Store) SaveRecordings(ctx context.Context, recs []types.RecordingMetadata) error {
	for _, r := range recs {
		_, err := s.db.ExecContext(ctx, `INSERT INTO recordings(filename, site, phone_key, minute_sec, transcript)
			VALUES(?, ?, ?, ?, ?)
			ON CONFLICT(filename) DO NOTHING`,
			r.Filename, r.Site, r.PhoneKey, r.MinuteSec, r.Transcript)
		if err != nil {
			return fmt.Errorf("save %s: %w", r.Filename, err)
		}
	}
	return nil
}

// ApplyMatches sets or clears the billing foreign key from a resolved
// batch. Unmatched results clear any stale association from a previous
// run over the same window.
func (s *Store) ApplyMatches(ctx context.Context, matches []types.MatchResult) error {
	for _, m := range matches {
		var callID, delta interface{}
		if m.Matched() {
			callID, delta = m.BillingID, m.DeltaSec
		}
		_, err := s.db.ExecContext(ctx,
			`UPDATE recordings SET call_id=?, delta_sec=? WHERE filename=?`,
			callID, delta, m.Filename)
		if err != nil {
			return fmt.Errorf("apply match %s: %w", m.Filename, err)
		}
	}
	return nil
}

// MatchedRecordings reads back the filename -> billing mapping for
// recordings that currently hold an association.
func (s *Store) MatchedRecordings(ctx context.Context) ([]types.MatchResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename, call_id, delta_sec FROM recordings WHERE call_id IS NOT NULL ORDER BY filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.MatchResult
	for rows.Next() {
		var m types.MatchResult
		if err := rows.Scan(&m.Filename, &m.BillingID, &m.DeltaSec); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Recording fetches one row by filename; sql.ErrNoRows when absent.
func (s *Store) Recording(ctx context.Context, filename string) (types.RecordingMetadata, error) {
	var r types.RecordingMetadata
	var transcript sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT filename, site, phone_key, minute_sec, transcript FROM recordings WHERE filename=?`,
		filename).Scan(&r.Filename, &r.Site, &r.PhoneKey, &r.MinuteSec, &transcript)
	if err != nil {
		return types.RecordingMetadata{}, err
	}
	r.Transcript = transcript.String
	return r, nil
}

// SetTranscript stores the collaborator-produced transcript.
func (s *Store) SetTranscript(ctx context.Context, filename, transcript string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE recordings SET transcript=? WHERE filename=?`, transcript, filename)
	return err
}

// Health pings the database.
func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
