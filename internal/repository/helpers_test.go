package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tgienger/tasktrack/internal/kv"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// stepClock returns a clock that advances one minute on every call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	next := baseTime
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Minute)
		return t
	}
}

// seqIDs returns an ID generator producing id-1, id-2, ...
func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func testOptions() []Option {
	return []Option{WithClock(stepClock()), WithIDGenerator(seqIDs())}
}

// failingStore wraps a store and fails reads or writes on demand.
type failingStore struct {
	kv.Store
	failGet bool
	failSet bool
}

var errBackend = errors.New("backend unavailable")

func (s *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet {
		return "", false, errBackend
	}
	return s.Store.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errBackend
	}
	return s.Store.Set(ctx, key, value)
}

func mustGet(t *testing.T, store kv.Store, key string) string {
	t.Helper()
	v, ok, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %q: %v", key, err)
	}
	if !ok {
		t.Fatalf("key %q not set", key)
	}
	return v
}
