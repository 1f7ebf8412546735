package repository

import (
	"context"

	"github.com/fastygo/tracker/domain"
)

// NotificationRepository stores the per-user in-app inbox.
type NotificationRepository interface {
	Push(ctx context.Context, notification *domain.Notification) error
	List(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}
