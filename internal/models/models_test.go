package models

import (
	"errors"
	"testing"
	"time"
)

func TestTaskStatus_IsValid(t *testing.T) {
	tests := []struct {
		status TaskStatus
		valid  bool
	}{
		{StatusTodo, true},
		{StatusInProgress, true},
		{StatusInReview, true},
		{StatusDone, true},
		{TaskStatus(""), false},
		{TaskStatus("done"), false}, // case sensitive
		{TaskStatus("BLOCKED"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		in   string
		want TaskStatus
		ok   bool
	}{
		{"todo", StatusTodo, true},
		{"in-progress", StatusInProgress, true},
		{"In Review", StatusInReview, true},
		{" DONE ", StatusDone, true},
		{"finished", TaskStatus("FINISHED"), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTaskStatus(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTaskStatus_Next(t *testing.T) {
	if got := StatusTodo.Next(); got != StatusInProgress {
		t.Errorf("TODO.Next() = %q", got)
	}
	if got := StatusDone.Next(); got != StatusTodo {
		t.Errorf("DONE.Next() = %q, want wrap to TODO", got)
	}
}

func TestParseTaskPriority(t *testing.T) {
	if p, ok := ParseTaskPriority("urgent"); !ok || p != PriorityUrgent {
		t.Errorf("ParseTaskPriority(urgent) = %q, %v", p, ok)
	}
	if _, ok := ParseTaskPriority("critical"); ok {
		t.Error("expected critical to be rejected")
	}
	if got := PriorityHigh.Label(); got != "High" {
		t.Errorf("Label() = %q, want High", got)
	}
}

func TestTaskFilter_Matches(t *testing.T) {
	task := Task{
		Title:       "Write docs",
		Description: "Draft the Storage section",
		Status:      StatusInProgress,
		Priority:    PriorityHigh,
		ProjectID:   "1",
		AssigneeID:  "u1",
	}

	tests := []struct {
		name   string
		filter TaskFilter
		want   bool
	}{
		{"empty", TaskFilter{}, true},
		{"status match", TaskFilter{Status: StatusInProgress}, true},
		{"status mismatch", TaskFilter{Status: StatusDone}, false},
		{"priority", TaskFilter{Priority: PriorityLow}, false},
		{"project", TaskFilter{ProjectID: "1"}, true},
		{"assignee mismatch", TaskFilter{AssigneeID: "u2"}, false},
		{"search title case-insensitive", TaskFilter{Search: "DOCS"}, true},
		{"search description", TaskFilter{Search: "storage"}, true},
		{"search miss", TaskFilter{Search: "deploy"}, false},
		{"conjunction fails on one", TaskFilter{ProjectID: "1", Search: "deploy"}, false},
		{"conjunction all", TaskFilter{ProjectID: "1", Status: StatusInProgress, Search: "draft"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(task); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaskStatistics_CompletionRate(t *testing.T) {
	if got := (TaskStatistics{}).CompletionRate(); got != 0 {
		t.Errorf("empty rate = %d", got)
	}
	if got := (TaskStatistics{Total: 3, DoneCount: 1}).CompletionRate(); got != 33 {
		t.Errorf("rate = %d, want 33", got)
	}
}

func TestCorruptionError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := error(&CorruptionError{Key: "tasks", Err: cause})

	if !errors.Is(err, ErrStorageCorrupted) {
		t.Error("expected errors.Is(err, ErrStorageCorrupted)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be unwrapped")
	}

	var ce *CorruptionError
	if !errors.As(err, &ce) || ce.Key != "tasks" {
		t.Errorf("errors.As failed: %v", ce)
	}
}

func TestInvalid(t *testing.T) {
	err := Invalid("title is required")
	if !errors.Is(err, ErrInvalidCommand) {
		t.Error("expected ErrInvalidCommand")
	}
	if err.Error() != "invalid command: title is required" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestParseDueDate(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2026-05-01", time.Date(2026, 5, 1, 23, 59, 59, 0, loc), false},
		{" 2026-05-01 ", time.Date(2026, 5, 1, 23, 59, 59, 0, loc), false},
		{"2026-05-01T10:30:00Z", time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC), false},
		{"tomorrow", time.Time{}, true},
		{"2026-13-01", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDueDate(tt.in, loc)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCommand) {
				t.Errorf("ParseDueDate(%q): expected ErrInvalidCommand, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDueDate(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDueDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDueDate_DSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}

	// 2026-03-08 is 23 hours long in New York
	got, err := ParseDueDate("2026-03-08", loc)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 3, 8, 23, 59, 59, 0, loc)
	if !got.Equal(want) {
		t.Errorf("ParseDueDate() = %v, want %v", got, want)
	}

	// and 2026-11-01 is 25 hours long
	got, err = ParseDueDate("2026-11-01", loc)
	if err != nil {
		t.Fatal(err)
	}
	want = time.Date(2026, 11, 1, 23, 59, 59, 0, loc)
	if !got.Equal(want) {
		t.Errorf("ParseDueDate() = %v, want %v", got, want)
	}
}
