// Package kv defines the key/value persistence boundary that task and
// project collections are stored behind, plus an in-memory implementation.
//
// Durable implementations (SQLite, Postgres) live in package db.
package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrQuotaExceeded is returned by a quota-limited store when a write would
// push its total size over the limit.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Store is a string key/value store.
type Store interface {
	// Get returns the value for key. ok is false if the key is not set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process Store. The zero value is not usable; use NewMemory.
type Memory struct {
	mu     sync.Mutex
	data   map[string]string
	quota  int
	writes int
}

// NewMemory creates an empty in-memory store without a quota
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// NewMemoryWithQuota creates an in-memory store that rejects writes once the
// summed length of all keys and values would exceed quota bytes.
func NewMemoryWithQuota(quota int) *Memory {
	m := NewMemory()
	m.quota = quota
	return m
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quota > 0 {
		size := m.sizeLocked() - m.entrySizeLocked(key) + len(key) + len(value)
		if size > m.quota {
			return fmt.Errorf("%w: %d > %d bytes", ErrQuotaExceeded, size, m.quota)
		}
	}
	m.data[key] = value
	m.writes++
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Writes returns how many successful Set calls the store has served
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Keys returns the stored keys in sorted order
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Memory) sizeLocked() int {
	n := 0
	for k, v := range m.data {
		n += len(k) + len(v)
	}
	return n
}

func (m *Memory) entrySizeLocked(key string) int {
	v, ok := m.data[key]
	if !ok {
		return 0
	}
	return len(key) + len(v)
}
