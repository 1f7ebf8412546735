package repository

import (
	"context"

	"github.com/fastygo/tracker/domain"
)

type TaskFilter struct {
	ProjectID  string
	AssigneeID string
	Status     string
	Limit      int
	Offset     int
}

// TaskRepository persists tasks together with their assignee set.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	// Save inserts or updates the task row. Assignments are managed separately.
	Save(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	AddAssignment(ctx context.Context, taskID, userID string) error
	RemoveAssignment(ctx context.Context, taskID, userID string) error
}

type SubtaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Subtask, error)
	ListByTask(ctx context.Context, taskID string) ([]domain.Subtask, error)
	Save(ctx context.Context, subtask *domain.Subtask) error
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error)
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.FileAttachment) error
	ListByTask(ctx context.Context, taskID string) ([]domain.FileAttachment, error)
}
