// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store provides the PostgreSQL script store.
package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/holomush/luahost/internal/scripts"
)

// CodeNotMigrated marks queries against a database without the schema.
const CodeNotMigrated = "STORE_NOT_MIGRATED"

// Connection retry defaults.
const (
	DefaultConnectAttempts = 5
	DefaultConnectBackoff  = 200 * time.Millisecond
)

// poolIface is the subset of *pgxpool.Pool the store uses.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresScriptStore implements scripts.Store and scripts.RunRecorder on
// PostgreSQL.
type PostgresScriptStore struct {
	pool poolIface
}

var (
	_ scripts.Store       = (*PostgresScriptStore)(nil)
	_ scripts.RunRecorder = (*PostgresScriptStore)(nil)
)

// ConnectOptions tunes the initial connection.
type ConnectOptions struct {
	Attempts uint64
	Backoff  time.Duration
}

// Connect opens a pool for dsn and waits for the database to answer, retrying
// with exponential backoff. An unparsable dsn fails immediately.
func Connect(ctx context.Context, dsn string, opts ConnectOptions) (*PostgresScriptStore, error) {
	if opts.Attempts == 0 {
		opts.Attempts = DefaultConnectAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultConnectBackoff
	}

	var pool *pgxpool.Pool
	backoff := retry.WithMaxRetries(opts.Attempts-1, retry.NewExponential(opts.Backoff))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		p, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			slog.WarnContext(ctx, "database not ready",
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").
			In("store").
			With("attempts", attempt).
			Wrapf(err, "connect to database")
	}
	return NewPostgresScriptStore(pool), nil
}

// NewPostgresScriptStore wraps an existing pool.
func NewPostgresScriptStore(pool poolIface) *PostgresScriptStore {
	return &PostgresScriptStore{pool: pool}
}

// Close closes the connection pool.
func (s *PostgresScriptStore) Close() {
	s.pool.Close()
}

// Read returns the named script.
func (s *PostgresScriptStore) Read(ctx context.Context, name string) (scripts.Descriptor, error) {
	if err := scripts.ValidateName(name); err != nil {
		return scripts.Descriptor{}, err
	}

	var source string
	err := s.pool.QueryRow(ctx, `SELECT source FROM scripts WHERE name = $1`, name).Scan(&source)
	if errors.Is(err, pgx.ErrNoRows) {
		return scripts.Descriptor{}, scripts.ErrNotFound(name)
	}
	if err != nil {
		return scripts.Descriptor{}, dbError(err, "read script", name)
	}
	return scripts.Descriptor{Name: name, Source: source}, nil
}

// List returns all script names, sorted.
func (s *PostgresScriptStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM scripts ORDER BY name`)
	if err != nil {
		return nil, dbError(err, "list scripts", "")
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, oops.In("store").With("operation", "scan script row").Wrap(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("store").With("operation", "iterate scripts").Wrap(err)
	}
	return names, nil
}

// Save creates or replaces a script.
func (s *PostgresScriptStore) Save(ctx context.Context, script scripts.Descriptor) error {
	if err := scripts.ValidateName(script.Name); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO scripts (name, source)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET source = EXCLUDED.source, updated_at = now()`,
		script.Name, script.Source)
	if err != nil {
		return dbError(err, "save script", script.Name)
	}
	return nil
}

// Delete removes the named script.
func (s *PostgresScriptStore) Delete(ctx context.Context, name string) error {
	if err := scripts.ValidateName(name); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM scripts WHERE name = $1`, name)
	if err != nil {
		return dbError(err, "delete script", name)
	}
	if tag.RowsAffected() == 0 {
		return scripts.ErrNotFound(name)
	}
	return nil
}

// RecordRun stores the outcome of one run.
func (s *PostgresScriptStore) RecordRun(ctx context.Context, run scripts.RunRecord) error {
	var errorCode, message any
	if run.ErrorCode != "" {
		errorCode = run.ErrorCode
	}
	if run.Message != "" {
		message = run.Message
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO script_runs (id, script, outcome, error_code, message, started_at, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.Script, run.Outcome, errorCode, message, run.StartedAt, run.Duration.Milliseconds())
	if err != nil {
		return dbError(err, "record run", run.Script)
	}
	return nil
}

// Runs returns the most recent runs of script, newest first.
func (s *PostgresScriptStore) Runs(ctx context.Context, script string, limit int) ([]scripts.RunRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, script, outcome, COALESCE(error_code, ''), COALESCE(message, ''), started_at, duration_ms
		 FROM script_runs WHERE script = $1 ORDER BY started_at DESC LIMIT $2`,
		script, limit)
	if err != nil {
		return nil, dbError(err, "list runs", script)
	}
	defer rows.Close()

	runs := []scripts.RunRecord{}
	for rows.Next() {
		var (
			run        scripts.RunRecord
			durationMS int64
		)
		if err := rows.Scan(&run.ID, &run.Script, &run.Outcome, &run.ErrorCode, &run.Message, &run.StartedAt, &durationMS); err != nil {
			return nil, oops.In("store").With("operation", "scan run row").Wrap(err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("store").With("operation", "iterate runs").Wrap(err)
	}
	return runs, nil
}

// dbError classifies a query failure. A missing table means the schema has
// not been applied.
func dbError(err error, operation, script string) error {
	builder := oops.In("store").With("operation", operation)
	if script != "" {
		builder = builder.With("script", script)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return builder.Code(CodeNotMigrated).
			Hint("run `luahost migrate up` first").
			Wrapf(err, "script store schema is missing")
	}
	return builder.Wrap(err)
}
