package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/paywall/pkg/kv"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Storage is a kv.Storage backed by a SQLite table.
type Storage struct {
	db *sql.DB

	getSQL    string
	setSQL    string
	deleteSQL string
}

var (
	_ kv.Storage = (*Storage)(nil)
	_ kv.Batch   = (*Storage)(nil)
)

// Open opens or creates the database at cfg.Path and makes sure the table exists.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Path == "" {
		return nil, ErrEmptyPath
	}
	if cfg.Table == "" {
		cfg.Table = "paywall_kv"
	}
	if !tableName.MatchString(cfg.Table) {
		return nil, ErrInvalidTable
	}

	dsn := cfg.Path
	if cfg.BusyTimeout > 0 {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", cfg.Path, cfg.BusyTimeout.Milliseconds())
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpen, err)
	}
	// a single connection keeps ":memory:" databases alive and serialises writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrFailedToOpen, err)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL DEFAULT (unixepoch())
)`, cfg.Table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrFailedToInit, err)
	}

	s := &Storage{db: db}
	s.getSQL = fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, cfg.Table)
	s.setSQL = fmt.Sprintf(`INSERT INTO %s (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = unixepoch()`, cfg.Table)
	s.deleteSQL = fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, cfg.Table)
	return s, nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", kv.ErrEmptyKey
	}
	var v string
	err := s.db.QueryRowContext(ctx, s.getSQL, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", kv.ErrNotFound
	}
	return v, err
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return kv.ErrEmptyKey
	}
	_, err := s.db.ExecContext(ctx, s.setSQL, key, value)
	return err
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return kv.ErrEmptyKey
	}
	_, err := s.db.ExecContext(ctx, s.deleteSQL, key)
	return err
}

func (s *Storage) SetMany(ctx context.Context, pairs ...kv.Pair) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, p := range pairs {
			if p.Key == "" {
				return kv.ErrEmptyKey
			}
			if _, err := tx.ExecContext(ctx, s.setSQL, p.Key, p.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) DeleteMany(ctx context.Context, keys ...string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if k == "" {
				return kv.ErrEmptyKey
			}
			if _, err := tx.ExecContext(ctx, s.deleteSQL, k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Healthcheck pings the database.
func (s *Storage) Healthcheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.Join(ErrHealthcheck, err)
	}
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	return tx.Commit()
}
