package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/infrastructure/buffer"
	"github.com/fastygo/tracker/repository/memory"
)

type switchableHealth struct{ online bool }

func (h *switchableHealth) IsOnline() bool { return h.online }

type flakyTasks struct {
	*memory.TaskRepository
	down bool
}

func (f *flakyTasks) Save(ctx context.Context, task *domain.Task) error {
	if f.down {
		return errors.New("connection refused")
	}
	return f.TaskRepository.Save(ctx, task)
}

type harness struct {
	store     *memory.Store
	tasks     *flakyTasks
	health    *switchableHealth
	buf       *buffer.Store
	processor *BufferProcessor
	bridge    *BufferBridge
}

func newHarness(t *testing.T, maxRetries int) *harness {
	t.Helper()
	buf, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), buffer.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = buf.Close() })

	store := memory.NewStore()
	require.NoError(t, store.Projects().Save(context.Background(), &domain.Project{ID: "p1", Name: "Tracker"}))

	h := &harness{
		store:  store,
		tasks:  &flakyTasks{TaskRepository: store.Tasks()},
		health: &switchableHealth{online: true},
		buf:    buf,
	}
	h.processor = NewBufferProcessor(buf, h.health, h.tasks, store.Projects(), nil, ProcessorConfig{
		Interval:   time.Second,
		MaxRetries: maxRetries,
	})
	h.bridge = NewBufferBridge(h.processor)
	return h
}

func TestBufferedTaskIsReplayedWhenOnline(t *testing.T) {
	h := newHarness(t, 3)
	ctx := context.Background()
	h.tasks.down = true
	h.health.online = false

	task := domain.NewTask("t1", "p1", "Write docs", "")
	task.Progress = 40
	require.NoError(t, h.bridge.BufferTask(ctx, buffer.OperationUpdate, task))
	assert.Equal(t, 1, h.processor.Size())

	require.NoError(t, h.processor.Drain(ctx))
	assert.Equal(t, 1, h.processor.Size(), "offline drain must not touch the buffer")

	h.health.online = true
	h.tasks.down = false
	require.NoError(t, h.processor.Drain(ctx))
	assert.Zero(t, h.processor.Size())

	stored, err := h.store.Tasks().GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 40, stored.Progress)
}

func TestBufferOperationWritesThroughWhenPossible(t *testing.T) {
	h := newHarness(t, 3)
	ctx := context.Background()

	require.NoError(t, h.bridge.BufferProject(ctx, buffer.OperationUpdate, &domain.Project{ID: "p1", Name: "Renamed"}))
	assert.Zero(t, h.processor.Size())

	project, err := h.store.Projects().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", project.Name)
}

func TestFailingItemIsDroppedAfterMaxRetries(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()
	h.tasks.down = true

	require.NoError(t, h.bridge.BufferTask(ctx, buffer.OperationUpdate, domain.NewTask("t1", "p1", "x", "")))
	require.Equal(t, 1, h.processor.Size())

	require.NoError(t, h.processor.Drain(ctx))
	assert.Equal(t, 1, h.processor.Size())

	require.NoError(t, h.processor.Drain(ctx))
	assert.Zero(t, h.processor.Size())
}

func TestDeleteOfMissingRowSettles(t *testing.T) {
	h := newHarness(t, 3)
	ctx := context.Background()
	h.health.online = false

	require.NoError(t, h.bridge.BufferTask(ctx, buffer.OperationDelete, &domain.Task{ID: "gone"}))
	h.health.online = true

	require.NoError(t, h.processor.Drain(ctx))
	assert.Zero(t, h.processor.Size())
}

func TestBridgeRejectsNil(t *testing.T) {
	bridge := NewBufferBridge(nil)
	assert.ErrorIs(t, bridge.BufferTask(context.Background(), buffer.OperationUpdate, nil), domain.ErrInvalidPayload)
}
