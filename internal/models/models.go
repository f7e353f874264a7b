package models

import (
	"strings"
	"time"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusInReview   TaskStatus = "IN_REVIEW"
	StatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists every status in workflow order
var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusInReview, StatusDone}

func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusDone:
		return true
	}
	return false
}

// Label returns a human readable name
func (s TaskStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusInReview:
		return "In Review"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// Next returns the following status in the workflow, wrapping DONE back to TODO
func (s TaskStatus) Next() TaskStatus {
	for i, st := range TaskStatuses {
		if st == s {
			return TaskStatuses[(i+1)%len(TaskStatuses)]
		}
	}
	return StatusTodo
}

// ParseTaskStatus accepts a status name in any case, with '-' or ' ' in place of '_'
func ParseTaskStatus(s string) (TaskStatus, bool) {
	st := TaskStatus(normalizeEnum(s))
	return st, st.IsValid()
}

// TaskPriority is how urgent a task is
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// TaskPriorities lists every priority from lowest to highest
var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Label returns a human readable name
func (p TaskPriority) Label() string {
	if !p.IsValid() {
		return string(p)
	}
	return string(p[0]) + strings.ToLower(string(p[1:]))
}

// ParseTaskPriority accepts a priority name in any case
func ParseTaskPriority(s string) (TaskPriority, bool) {
	p := TaskPriority(normalizeEnum(s))
	return p, p.IsValid()
}

func normalizeEnum(s string) string {
	s = strings.TrimSpace(strings.ToUpper(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// UserRole is the role a user holds
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleManager   UserRole = "MANAGER"
	RoleDeveloper UserRole = "DEVELOPER"
)

// Task represents a single task
type Task struct {
	ID          string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	ProjectID   string
	AssigneeID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DueDate     *time.Time // nil if no due date
	CompletedAt *time.Time // set iff Status == StatusDone
}

// Project represents a named grouping of tasks
type Project struct {
	ID          string
	Name        string
	Description string
	Color       string
	CreatedAt   time.Time
	Active      bool
}

// User represents someone tasks can be assigned to
type User struct {
	ID        string
	Name      string
	Email     string
	Role      UserRole
	Avatar    string
	CreatedAt time.Time
}

// TaskFilter narrows a task listing. Zero-valued fields do not constrain.
type TaskFilter struct {
	Status     TaskStatus
	Priority   TaskPriority
	ProjectID  string
	AssigneeID string
	Search     string
}

// IsEmpty reports whether the filter matches every task
func (f TaskFilter) IsEmpty() bool {
	return f == TaskFilter{}
}

// Matches reports whether t satisfies every set predicate
func (f TaskFilter) Matches(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.ProjectID != "" && t.ProjectID != f.ProjectID {
		return false
	}
	if f.AssigneeID != "" && t.AssigneeID != f.AssigneeID {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	return true
}

// CreateTaskCommand describes a task to create
type CreateTaskCommand struct {
	Title       string
	Description string
	Priority    TaskPriority
	ProjectID   string
	AssigneeID  string
	DueDate     *time.Time
}

// UpdateTaskCommand describes changes to a task. Nil fields are left untouched.
type UpdateTaskCommand struct {
	ID          string
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	AssigneeID  *string
	DueDate     *time.Time
}

// CreateProjectCommand describes a project to create
type CreateProjectCommand struct {
	Name        string
	Description string
	Color       string
}

// TaskStatistics summarises tasks by status
type TaskStatistics struct {
	Total           int `json:"total"`
	TodoCount       int `json:"todoCount"`
	InProgressCount int `json:"inProgressCount"`
	InReviewCount   int `json:"inReviewCount"`
	DoneCount       int `json:"doneCount"`
}

// CompletionRate returns the percentage of tasks that are done, rounded down
func (s TaskStatistics) CompletionRate() int {
	if s.Total == 0 {
		return 0
	}
	return s.DoneCount * 100 / s.Total
}

// ParseDueDate accepts an RFC 3339 timestamp or a YYYY-MM-DD date. A bare
// date means the last second of that day in loc, so a task due today is not
// already overdue.
func ParseDueDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, Invalid("due date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return d.AddDate(0, 0, 1).Add(-time.Second), nil
}
