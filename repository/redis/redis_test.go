package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redislib.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionRepository(t *testing.T) {
	mr, client := newClient(t)
	repo := NewSessionRepository(client, time.Hour)
	ctx := context.Background()

	now := time.Now().UTC()
	session := &domain.Session{ID: "s1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, repo.Save(ctx, session))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, mr.TTL("tracker:session:s1") > 0)

	require.NoError(t, repo.Extend(ctx, "s1", 3600))
	assert.Equal(t, time.Hour, mr.TTL("tracker:session:s1"))

	mr.FastForward(2 * time.Hour)
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	err = repo.Extend(ctx, "s1", 60)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestNotificationRepositoryCapsInbox(t *testing.T) {
	_, client := newClient(t)
	repo := NewNotificationRepository(client, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Push(ctx, &domain.Notification{
			UserID:  "u1",
			Type:    domain.EventTaskUpdated,
			Message: fmt.Sprintf("update %d", i),
		}))
	}

	items, err := repo.List(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "update 4", items[0].Message)
	assert.Equal(t, "update 2", items[2].Message)

	limited, err := repo.List(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	empty, err := repo.List(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNotificationRepositoryMarkRead(t *testing.T) {
	_, client := newClient(t)
	repo := NewNotificationRepository(client, 10)
	ctx := context.Background()

	first := &domain.Notification{UserID: "u1", Type: domain.EventTaskAssigned, TaskID: "t1", Message: "a"}
	second := &domain.Notification{UserID: "u1", Type: domain.EventCommentAdded, TaskID: "t1", Message: "b"}
	require.NoError(t, repo.Push(ctx, first))
	require.NoError(t, repo.Push(ctx, second))

	require.NoError(t, repo.MarkRead(ctx, "u1", first.ID))
	require.NoError(t, repo.MarkRead(ctx, "u1", first.ID))

	items, err := repo.List(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.False(t, items[0].Read)
	assert.True(t, items[1].Read)
	assert.Equal(t, first.ID, items[1].ID)

	err = repo.MarkRead(ctx, "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
}
