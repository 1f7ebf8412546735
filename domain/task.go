package domain

import (
	"strings"
	"time"
)

// Task is a unit of work inside a project.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Progress    int        `json:"progress"`
	Status      Status     `json:"status"`
	Assignees   []UserRef  `json:"assignees"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask returns a pending task with zero progress.
func NewTask(id, projectID, title, description string) *Task {
	return &Task{
		ID:          id,
		ProjectID:   projectID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      StatusPending,
	}
}

func (t *Task) Validate() error {
	if t == nil || strings.TrimSpace(t.Title) == "" {
		return NewError(ErrCodeInvalid, "task title is required")
	}
	if t.ProjectID == "" {
		return NewError(ErrCodeInvalid, "task project is required")
	}
	return nil
}

func (t *Task) SetDeadline(deadline time.Time) {
	d := deadline.UTC()
	t.Deadline = &d
}

// IsOverdue reports whether the deadline has passed while work remains.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.deadlinePassed(now) && t.Progress < MaxProgress
}

func (t *Task) deadlinePassed(now time.Time) bool {
	return t != nil && t.Deadline != nil && now.After(*t.Deadline)
}

// ApplyProgress clamps value, resolves the matching status and stores both.
func (t *Task) ApplyProgress(value int, resolver *StatusResolver, now time.Time) Status {
	t.Progress = ClampProgress(value)
	t.Status = resolver.Resolve(ProgressContext{
		Progress:  t.Progress,
		IsOverdue: t.deadlinePassed(now),
	})
	return t.Status
}

// ChangeStatus overrides the status without touching progress.
func (t *Task) ChangeStatus(status Status) error {
	if !status.Valid() {
		return NewError(ErrCodeInvalid, "unknown status "+string(status))
	}
	t.Status = status
	return nil
}

// AddAssignee appends the user unless already assigned. It reports whether the set changed.
func (t *Task) AddAssignee(user UserRef) bool {
	if t.HasAssignee(user.ID) {
		return false
	}
	t.Assignees = append(t.Assignees, user)
	return true
}

func (t *Task) RemoveAssignee(userID string) bool {
	for i, a := range t.Assignees {
		if a.ID == userID {
			t.Assignees = append(t.Assignees[:i], t.Assignees[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Task) HasAssignee(userID string) bool {
	for _, a := range t.Assignees {
		if a.ID == userID {
			return true
		}
	}
	return false
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// Subtask shares the progress/status shape of Task but has no assignees.
type Subtask struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Progress  int       `json:"progress"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSubtask(id, taskID, title string) *Subtask {
	return &Subtask{
		ID:     id,
		TaskID: taskID,
		Title:  strings.TrimSpace(title),
		Status: StatusPending,
	}
}

// ApplyProgress clamps value and resolves the status. Subtasks carry no deadline.
func (s *Subtask) ApplyProgress(value int, resolver *StatusResolver) Status {
	s.Progress = ClampProgress(value)
	s.Status = resolver.Resolve(ProgressContext{Progress: s.Progress})
	return s.Status
}

func (s *Subtask) ChangeStatus(status Status) error {
	if !status.Valid() {
		return NewError(ErrCodeInvalid, "unknown status "+string(status))
	}
	s.Status = status
	return nil
}
