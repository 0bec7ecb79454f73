package kv

import (
	"context"
	"sync"
)

// Memory is a map-backed Storage. It is durable only for the life of the value,
// which is enough to simulate a reload by building a second consumer on top of
// the same Memory.
type Memory struct {
	mu    sync.RWMutex
	data  map[string]string
	quota int
	used  int
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithQuota caps the total size of keys plus values in bytes. Writes that would
// exceed it fail with ErrQuotaExceeded, like browser local storage does.
func WithQuota(bytes int) MemoryOption {
	return func(m *Memory) {
		if bytes > 0 {
			m.quota = bytes
		}
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{data: make(map[string]string)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setLocked(key, value)
}

func (m *Memory) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLocked(key)
	return nil
}

// SetMany writes all pairs or none of them.
func (m *Memory) SetMany(_ context.Context, pairs ...Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used
	for _, p := range pairs {
		if p.Key == "" {
			return ErrEmptyKey
		}
		used += m.delta(p.Key, p.Value)
	}
	if m.quota > 0 && used > m.quota {
		return ErrQuotaExceeded
	}
	for _, p := range pairs {
		_ = m.setLocked(p.Key, p.Value)
	}
	return nil
}

func (m *Memory) DeleteMany(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.deleteLocked(k)
	}
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *Memory) setLocked(key, value string) error {
	d := m.delta(key, value)
	if m.quota > 0 && m.used+d > m.quota {
		return ErrQuotaExceeded
	}
	m.data[key] = value
	m.used += d
	return nil
}

func (m *Memory) deleteLocked(key string) {
	if v, ok := m.data[key]; ok {
		m.used -= len(key) + len(v)
		delete(m.data, key)
	}
}

// delta is the change in used bytes if key were set to value.
func (m *Memory) delta(key, value string) int {
	if old, ok := m.data[key]; ok {
		return len(value) - len(old)
	}
	return len(key) + len(value)
}
