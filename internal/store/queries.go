// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/festivo-go/internal/model"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// New returns Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries runs typed statements against a connection or transaction.
type Queries struct {
	db DBTX
}

// WithTx returns a copy of q bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Store owns the connection pool and runs multi-statement operations atomically.
type Store struct {
	*Queries
	db *sql.DB
}

// NewStore wraps db.
func NewStore(db *sql.DB) *Store {
	return &Store{Queries: New(db), db: db}
}

// DB returns the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ExecTx runs fn inside a transaction, committing when fn returns nil.
func (s *Store) ExecTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(s.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// notFound maps sql.ErrNoRows to model.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint. Both
// drivers surface the SQLite message text.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// duplicate converts a unique violation to *model.DuplicateError.
func duplicate(err error, entity, value string) error {
	if IsUniqueViolation(err) {
		return &model.DuplicateError{Entity: entity, Value: value}
	}
	return err
}

// requireAffected returns model.ErrNotFound when a write touched no rows.
func requireAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDate(s string) (time.Time, error) {
	t, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored date %q: %w", s, err)
	}
	return t, nil
}

func scanNullDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := scanDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: model.FormatDate(*t), Valid: true}
}
