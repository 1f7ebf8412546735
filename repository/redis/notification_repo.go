package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

type notificationRepository struct {
	client redislib.UniversalClient
	prefix string
	size   int64
}

// NewNotificationRepository keeps each user's inbox as a Redis list capped at size entries, newest first.
func NewNotificationRepository(client redislib.UniversalClient, size int) repository.NotificationRepository {
	if size <= 0 {
		size = 100
	}
	return &notificationRepository{
		client: client,
		prefix: "tracker:inbox:",
		size:   int64(size),
	}
}

func (r *notificationRepository) Push(ctx context.Context, n *domain.Notification) error {
	if n == nil || n.UserID == "" {
		return domain.ErrInvalidPayload
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	payload, err := sonic.Marshal(n)
	if err != nil {
		return err
	}

	key := r.key(n.UserID)
	_, err = r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.LPush(ctx, key, payload)
		pipe.LTrim(ctx, key, 0, r.size-1)
		return nil
	})
	return err
}

func (r *notificationRepository) List(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raw, err := r.client.LRange(ctx, r.key(userID), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	items := make([]domain.Notification, 0, len(raw))
	for _, entry := range raw {
		var n domain.Notification
		if err := sonic.UnmarshalString(entry, &n); err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "decode notification", err)
		}
		items = append(items, n)
	}
	return items, nil
}

// MarkRead rewrites the matching entry in place.
func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	key := r.key(userID)
	raw, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return err
	}
	for i, entry := range raw {
		var n domain.Notification
		if err := sonic.UnmarshalString(entry, &n); err != nil || n.ID != id {
			continue
		}
		if n.Read {
			return nil
		}
		n.Read = true
		payload, err := sonic.Marshal(&n)
		if err != nil {
			return err
		}
		return r.client.LSet(ctx, key, int64(i), payload).Err()
	}
	return domain.ErrNotificationNotFound
}

func (r *notificationRepository) key(userID string) string {
	return fmt.Sprintf("%s%s", r.prefix, userID)
}
