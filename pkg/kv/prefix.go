package kv

import "context"

type prefixed struct {
	next   Storage
	prefix string
}

// WithPrefix returns a Storage that prepends prefix to every key.
func WithPrefix(next Storage, prefix string) Storage {
	if prefix == "" {
		return next
	}
	return &prefixed{next: next, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	return p.next.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return p.next.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return p.next.Delete(ctx, p.prefix+key)
}

func (p *prefixed) SetMany(ctx context.Context, pairs ...Pair) error {
	full := make([]Pair, len(pairs))
	for i, pair := range pairs {
		if pair.Key == "" {
			return ErrEmptyKey
		}
		full[i] = Pair{Key: p.prefix + pair.Key, Value: pair.Value}
	}
	return SetAll(ctx, p.next, full...)
}

func (p *prefixed) DeleteMany(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		if k == "" {
			return ErrEmptyKey
		}
		full[i] = p.prefix + k
	}
	return DeleteAll(ctx, p.next, full...)
}
