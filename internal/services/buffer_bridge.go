package services

import (
	"context"

	"github.com/bytedance/sonic"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/infrastructure/buffer"
	"github.com/fastygo/tracker/usecase"
)

const (
	priorityProject = 3
	priorityTask    = 4
)

// BufferBridge turns use case writes into buffer items.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if b.processor == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityTask, operation, task.ID, priorityTask, task)
}

func (b *BufferBridge) BufferProject(ctx context.Context, operation string, project *domain.Project) error {
	if b.processor == nil || project == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityProject, operation, project.ID, priorityProject, project)
}

func (b *BufferBridge) enqueue(ctx context.Context, entity, operation, id string, priority int, v interface{}) error {
	payload, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		EntityID:  id,
		Entity:    entity,
		Operation: operation,
		Data:      payload,
		Priority:  priority,
	})
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
