package usecase

import (
	"context"

	"github.com/fastygo/tracker/domain"
)

// Operations a use case may hand to the OperationBuffer.
const (
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
	BufferProject(ctx context.Context, operation string, project *domain.Project) error
}

// EventPublisher fans notification events out to subscribers. Publish never fails.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.NotificationEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.NotificationEvent) {}

// PublisherOrNoop returns p, or a publisher that drops every event when p is nil.
func PublisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
