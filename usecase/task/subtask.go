package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/fastygo/tracker/domain"
)

func (uc *UseCase) AddSubtask(ctx context.Context, taskID, title string) (*domain.Subtask, error) {
	subtask := domain.NewSubtask(uuid.NewString(), taskID, title)
	if subtask.Title == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "subtask title is required")
	}
	if _, err := uc.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	if err := uc.subtasks.Save(ctx, subtask); err != nil {
		return nil, err
	}
	return subtask, nil
}

func (uc *UseCase) ListSubtasks(ctx context.Context, taskID string) ([]domain.Subtask, error) {
	return uc.subtasks.ListByTask(ctx, taskID)
}

// UpdateSubtaskProgress clamps value and derives the status with the active policy.
func (uc *UseCase) UpdateSubtaskProgress(ctx context.Context, id string, value int) (*domain.Subtask, error) {
	subtask, err := uc.subtasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subtask.ApplyProgress(value, uc.resolver)
	if err := uc.subtasks.Save(ctx, subtask); err != nil {
		return nil, err
	}
	return subtask, nil
}

func (uc *UseCase) CompleteSubtask(ctx context.Context, id string) (*domain.Subtask, error) {
	return uc.UpdateSubtaskProgress(ctx, id, domain.MaxProgress)
}

func (uc *UseCase) DeleteSubtask(ctx context.Context, id string) error {
	return uc.subtasks.Delete(ctx, id)
}
