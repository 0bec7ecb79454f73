package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/paywall/pkg/kv"
)

// Storage is a kv.Storage over plain redis strings. Values never expire on
// their own; the subscription store decides when a record is over.
type Storage struct {
	db redis.UniversalClient
}

var (
	_ kv.Storage = (*Storage)(nil)
	_ kv.Batch   = (*Storage)(nil)
)

// NewStorage wraps client. Panics if client is nil.
func NewStorage(client redis.UniversalClient) *Storage {
	if client == nil {
		panic("redis: client is required")
	}
	return &Storage{db: client}
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", kv.ErrEmptyKey
	}
	v, err := s.db.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", kv.ErrNotFound
	}
	return v, err
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return kv.ErrEmptyKey
	}
	return s.db.Set(ctx, key, value, 0).Err()
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return kv.ErrEmptyKey
	}
	return s.db.Del(ctx, key).Err()
}

// SetMany writes all pairs in a single MULTI/EXEC transaction.
func (s *Storage) SetMany(ctx context.Context, pairs ...kv.Pair) error {
	for _, p := range pairs {
		if p.Key == "" {
			return kv.ErrEmptyKey
		}
	}
	_, err := s.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range pairs {
			pipe.Set(ctx, p.Key, p.Value, 0)
		}
		return nil
	})
	return err
}

// DeleteMany removes keys with a single DEL.
func (s *Storage) DeleteMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	for _, k := range keys {
		if k == "" {
			return kv.ErrEmptyKey
		}
	}
	return s.db.Del(ctx, keys...).Err()
}

// Close closes the underlying client.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Conn returns the underlying client.
func (s *Storage) Conn() redis.UniversalClient {
	return s.db
}
