// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides the SQLite persistence layer: connection setup,
// goose migrations and typed queries for every festival table.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)
)

//go:embed migrations/*.sql
var migrations embed.FS

// Driver names accepted by Open.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// connPragma is a per-connection setting. Both drivers apply DSN pragmas to
// every connection they open, so the whole pool shares them.
type connPragma struct {
	name         string
	modernc      string // _pragma=name(value)
	mattn, value string // mattn query key and value
}

// foreign_keys keeps transactions from pointing at deleted references.
var connPragmas = []connPragma{
	{name: "journal_mode", modernc: "WAL", mattn: "_journal_mode", value: "WAL"},
	{name: "busy_timeout", modernc: "5000", mattn: "_busy_timeout", value: "5000"},
	{name: "synchronous", modernc: "NORMAL", mattn: "_synchronous", value: "NORMAL"},
	{name: "foreign_keys", modernc: "1", mattn: "_foreign_keys", value: "on"},
}

// dsn appends connPragmas to path in the query syntax of driver.
func dsn(driver, path string) string {
	q := make(url.Values)
	for _, p := range connPragmas {
		if driver == DriverMattn {
			q.Set(p.mattn, p.value)
		} else {
			q.Add("_pragma", p.name+"("+p.modernc+")")
		}
	}
	return path + "?" + q.Encode()
}

// Options tune the connection pool.
type Options struct {
	Driver       string // DriverModernc when empty
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	MaxIdleTime  time.Duration
}

// DefaultOptions suits a WAL database shared by one process.
func DefaultOptions() Options {
	return Options{
		Driver:       DriverModernc,
		MaxOpenConns: 25,
		MaxIdleConns: 10,
		MaxLifetime:  30 * time.Minute,
		MaxIdleTime:  5 * time.Minute,
	}
}

// Open opens the database at path with connPragmas on every connection and
// pings it.
func Open(path string, opts Options) (*sql.DB, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverModernc
	}
	if driver != DriverModernc && driver != DriverMattn {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn(driver, path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.MaxLifetime)
	db.SetConnMaxIdleTime(opts.MaxIdleTime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// Migrate applies pending embedded migrations and returns how many ran.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	dir, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return 0, err
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, db, dir)
	if err != nil {
		return 0, fmt.Errorf("loading migrations: %w", err)
	}
	results, err := p.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("running migrations: %w", err)
	}
	return len(results), nil
}
