package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

const defaultInboxLimit = 50

// UseCase exposes the in-app inbox filled by the in-app subscriber.
type UseCase struct {
	inbox  repository.NotificationRepository
	logger *zap.Logger
}

func New(inbox repository.NotificationRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{inbox: inbox, logger: logger}
}

// ListNotifications returns the newest notifications first.
func (uc *UseCase) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if limit <= 0 {
		limit = defaultInboxLimit
	}
	return uc.inbox.List(ctx, userID, limit)
}

// UnreadCount counts unread entries among the stored notifications.
func (uc *UseCase) UnreadCount(ctx context.Context, userID string) (int, error) {
	items, err := uc.inbox.List(ctx, userID, 0)
	if err != nil {
		return 0, err
	}
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	return unread, nil
}

func (uc *UseCase) MarkRead(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	return uc.inbox.MarkRead(ctx, userID, id)
}
