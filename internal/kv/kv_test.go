package kv

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, "tasks"); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v", ok, err)
	}

	if err := m.Set(ctx, "tasks", "[]"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := m.Get(ctx, "tasks")
	if err != nil || !ok || v != "[]" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}

	if err := m.Delete(ctx, "tasks"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "tasks"); ok {
		t.Error("expected key to be gone after Delete")
	}

	// Deleting again is fine
	if err := m.Delete(ctx, "tasks"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}

	if m.Writes() != 1 {
		t.Errorf("Writes() = %d, want 1", m.Writes())
	}
}

func TestMemory_Quota(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryWithQuota(20)

	if err := m.Set(ctx, "k", "0123456789"); err != nil {
		t.Fatalf("Set within quota: %v", err)
	}

	// Replacing the same key only counts the new value
	if err := m.Set(ctx, "k", "0123456789abcdefghi"); err != nil {
		t.Fatalf("replace within quota: %v", err)
	}

	err := m.Set(ctx, "other", strings.Repeat("x", 10))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	if got := m.Keys(); len(got) != 1 || got[0] != "k" {
		t.Errorf("Keys() = %v, want [k]", got)
	}
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	if err := m.Set(ctx, "k", "v"); !errors.Is(err, context.Canceled) {
		t.Errorf("Set with canceled ctx = %v", err)
	}
	if _, _, err := m.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get with canceled ctx = %v", err)
	}
}
