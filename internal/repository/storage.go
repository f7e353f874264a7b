// Package repository implements the task and project storage adapters on top
// of a kv.Store, plus the read-only user directory.
//
// Each collection is stored as one JSON array under a fixed key and is
// rewritten as a whole on every mutation. A payload that cannot be decoded is
// discarded: the adapter falls back to its default collection, logs, and
// reports a *models.CorruptionError to the OnCorrupt handler.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/tasktrack/internal/kv"
	"github.com/tgienger/tasktrack/internal/models"
)

// Option configures a repository
type Option func(*options)

type options struct {
	logger    *log.Logger
	now       func() time.Time
	newID     func() string
	onCorrupt func(*models.CorruptionError)
}

func defaultOptions() options {
	return options{
		logger: log.New(io.Discard, "", 0),
		now:    time.Now,
		newID:  func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets where diagnostics are written
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides how new identifiers are generated
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// WithCorruptionHandler registers a callback invoked whenever a stored
// payload is discarded because it could not be decoded.
func WithCorruptionHandler(fn func(*models.CorruptionError)) Option {
	return func(o *options) {
		o.onCorrupt = fn
	}
}

// timestamp returns the current time in UTC without a monotonic reading, so
// values compare equal after a round trip through storage.
func (o options) timestamp() time.Time {
	return o.now().UTC()
}

func (o options) reportCorruption(cerr *models.CorruptionError) {
	o.logger.Printf("discarding unreadable %q payload: %v", cerr.Key, cerr.Err)
	if o.onCorrupt != nil {
		o.onCorrupt(cerr)
	}
}

// loadCollection reads the JSON array under key and decodes every record.
// found is false when the key has never been written. A backend failure is
// returned as ErrStorageReadFailed; an undecodable payload as a
// *models.CorruptionError.
func loadCollection[R, T any](ctx context.Context, store kv.Store, key string, decode func(R) (T, error)) (items []T, found bool, err error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("%w: read %q: %w", models.ErrStorageReadFailed, key, err)
	}
	if !ok {
		return nil, false, nil
	}

	var records []R
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, true, &models.CorruptionError{Key: key, Err: err}
	}

	items = make([]T, 0, len(records))
	for i, rec := range records {
		item, err := decode(rec)
		if err != nil {
			return nil, true, &models.CorruptionError{Key: key, Err: fmt.Errorf("record %d: %w", i, err)}
		}
		items = append(items, item)
	}
	return items, true, nil
}

// saveCollection encodes items and replaces the value under key.
func saveCollection[T, R any](ctx context.Context, store kv.Store, key string, items []T, encode func(T) R) error {
	records := make([]R, len(items))
	for i, item := range items {
		records[i] = encode(item)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %w", models.ErrStorageWriteFailed, key, err)
	}
	if err := store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("%w: write %q: %w", models.ErrStorageWriteFailed, key, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t.UTC(), nil
}

func parseTimePtr(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseTime(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
