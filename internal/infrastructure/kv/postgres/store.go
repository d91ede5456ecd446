package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
	"github.com/kirillkom/hris-onboarding/internal/infrastructure/resilience"
)

// Store keeps every key in one kv_entries row holding the serialized value as
// JSONB.
type Store struct {
	db       *sql.DB
	executor *resilience.Executor
	now      func() time.Time
}

func New(db *sql.DB, executor *resilience.Executor) *Store {
	return &Store{
		db:       db,
		executor: executor,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key TEXT PRIMARY KEY,
	value JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_kv_entries_updated_at ON kv_entries(updated_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const schemaLockID = int64(2026030101)

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := s.run(ctx, "postgres.kv.get", func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx, `
SELECT value
FROM kv_entries
WHERE key = $1
`, key)
		var raw []byte
		if err := row.Scan(&raw); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				value, found = nil, false
				return nil
			}
			return classifyDBError("scan kv entry", err)
		}
		value, found = raw, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.run(ctx, "postgres.kv.put", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO kv_entries (key, value, updated_at)
VALUES ($1, $2::jsonb, $3)
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`, key, string(value), s.now())
		if err != nil {
			return classifyDBError("upsert kv entry", err)
		}
		return nil
	})
}

func (s *Store) run(ctx context.Context, operation string, fn func(context.Context) error) error {
	if s.executor == nil {
		return fn(ctx)
	}
	return s.executor.Execute(ctx, operation, fn, resilience.TemporaryClassifier)
}

// classifyDBError marks connection loss, shutdowns and serialization
// conflicts as domain.ErrTemporary so the executor retries them.
func classifyDBError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, driver.ErrBadConn) || pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"),
			pgErr.Code == "40001",
			pgErr.Code == "40P01",
			pgErr.Code == "57P01",
			pgErr.Code == "57P03":
			return domain.WrapError(domain.ErrTemporary, operation, err)
		}
	}
	return fmt.Errorf("%s: %w", operation, err)
}
