package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Slot is a single named value in the slots table. A missing row reads
// as nil.
type Slot struct {
	db   *sql.DB
	name string
}

// Load returns the stored bytes, or nil when nothing was saved yet.
func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM slots WHERE name = ?`, s.name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %q: %w", s.name, err)
	}
	return value, nil
}

// Save replaces the stored bytes.
func (s *Slot) Save(ctx context.Context, value []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO slots (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.name, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save slot %q: %w", s.name, err)
	}
	return nil
}

// Name returns the slot name.
func (s *Slot) Name() string {
	return s.name
}
