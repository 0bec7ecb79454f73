package kv

import (
	"context"
	"errors"
)

// Storage is a synchronous, durable string key/value store.
type Storage interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Batch is implemented by backends that can apply several writes atomically.
type Batch interface {
	SetMany(ctx context.Context, pairs ...Pair) error
	DeleteMany(ctx context.Context, keys ...string) error
}

// Pair is a single key/value write.
type Pair struct {
	Key   string
	Value string
}

// SetAll writes every pair. Backends implementing Batch apply them atomically.
// Otherwise pairs are written in order and, if a later write fails, the keys
// already written get their previous values back (or are removed when they
// did not exist before).
func SetAll(ctx context.Context, s Storage, pairs ...Pair) error {
	if b, ok := s.(Batch); ok {
		return b.SetMany(ctx, pairs...)
	}

	prev := make([]snapshot, 0, len(pairs))
	for _, p := range pairs {
		v, err := s.Get(ctx, p.Key)
		switch {
		case errors.Is(err, ErrNotFound):
			prev = append(prev, snapshot{key: p.Key})
		case err != nil:
			return err
		default:
			prev = append(prev, snapshot{key: p.Key, value: v, exists: true})
		}
	}

	for i, p := range pairs {
		if err := s.Set(ctx, p.Key, p.Value); err != nil {
			return errors.Join(err, restore(ctx, s, prev[:i]))
		}
	}
	return nil
}

type snapshot struct {
	key    string
	value  string
	exists bool
}

// restore undoes writes in reverse order.
func restore(ctx context.Context, s Storage, prev []snapshot) error {
	var errs []error
	for i := len(prev) - 1; i >= 0; i-- {
		p := prev[i]
		var err error
		if p.exists {
			err = s.Set(ctx, p.key, p.value)
		} else {
			err = s.Delete(ctx, p.key)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeleteAll removes every key, in order when the backend has no Batch support.
// All deletions are attempted and their errors joined.
func DeleteAll(ctx context.Context, s Storage, keys ...string) error {
	if b, ok := s.(Batch); ok {
		return b.DeleteMany(ctx, keys...)
	}

	var errs []error
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
