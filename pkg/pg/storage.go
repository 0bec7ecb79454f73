package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/paywall/pkg/kv"
)

const (
	getSQL    = `SELECT value FROM paywall_kv WHERE key = $1`
	setSQL    = `INSERT INTO paywall_kv (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	deleteSQL = `DELETE FROM paywall_kv WHERE key = ANY($1)`
)

// Storage is a kv.Storage over the paywall_kv table. Run Migrate first.
type Storage struct {
	pool *pgxpool.Pool
}

var (
	_ kv.Storage = (*Storage)(nil)
	_ kv.Batch   = (*Storage)(nil)
)

// NewStorage panics if pool is nil.
func NewStorage(pool *pgxpool.Pool) *Storage {
	if pool == nil {
		panic("pg: pool is required")
	}
	return &Storage{pool: pool}
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", kv.ErrEmptyKey
	}
	var v string
	if err := s.pool.QueryRow(ctx, getSQL, key).Scan(&v); err != nil {
		if IsNotFoundError(err) {
			return "", kv.ErrNotFound
		}
		return "", err
	}
	return v, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return kv.ErrEmptyKey
	}
	_, err := s.pool.Exec(ctx, setSQL, key, value)
	return err
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.DeleteMany(ctx, key)
}

// SetMany upserts all pairs in one transaction.
func (s *Storage) SetMany(ctx context.Context, pairs ...kv.Pair) error {
	for _, p := range pairs {
		if p.Key == "" {
			return kv.ErrEmptyKey
		}
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range pairs {
			batch.Queue(setSQL, p.Key, p.Value)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// DeleteMany removes all keys with a single statement.
func (s *Storage) DeleteMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	for _, k := range keys {
		if k == "" {
			return kv.ErrEmptyKey
		}
	}
	_, err := s.pool.Exec(ctx, deleteSQL, keys)
	return err
}

// Close closes the pool.
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}
