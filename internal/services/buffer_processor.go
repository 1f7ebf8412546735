package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/infrastructure/buffer"
	"github.com/fastygo/tracker/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// BufferStore is the subset of buffer.Store the processor drives.
type BufferStore interface {
	Enqueue(item buffer.Item) error
	Peek(limit int) ([]buffer.Item, error)
	Remove(item buffer.Item) error
	Requeue(item buffer.Item) error
	Size() (int, error)
	Cleanup(olderThan time.Time) (int, error)
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// BufferProcessor replays buffered task and project writes against the primary store.
type BufferProcessor struct {
	store    BufferStore
	monitor  ConnectionHealth
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      ProcessorConfig
}

func NewBufferProcessor(
	store BufferStore,
	monitor ConnectionHealth,
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:    store,
		monitor:  monitor,
		tasks:    tasks,
		projects: projects,
		logger:   logger.Named("buffer"),
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	})
	_, _ = bp.cron.AddFunc("@hourly", bp.purgeExpired)

	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
}

// Stop waits for a running drain to finish or ctx to expire.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain replays one batch. Failed items are requeued until MaxRetries, then dropped.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.Peek(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		log := bp.logger.With(
			zap.String("item_id", item.ID),
			zap.String("entity", item.Entity),
			zap.String("entity_id", item.EntityID),
			zap.String("operation", item.Operation))

		err := bp.processItem(ctx, item)
		switch {
		case err == nil, isSettled(err):
			if err := bp.store.Remove(item); err != nil {
				log.Warn("failed to purge processed buffer item", zap.Error(err))
			}
		default:
			log.Error("failed to process buffer item", zap.Error(err))
			item.Retries++
			if item.Retries >= bp.cfg.MaxRetries {
				log.Warn("dropping buffer item (max retries reached)")
				_ = bp.store.Remove(item)
				continue
			}
			if err := bp.store.Requeue(item); err != nil {
				log.Error("failed to requeue buffer item", zap.Error(err))
			}
		}
	}
	return nil
}

// BufferOperation attempts the write immediately and persists it when that fails.
func (bp *BufferProcessor) BufferOperation(ctx context.Context, item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return errors.New("buffer processor not configured")
	}

	if bp.monitor == nil || bp.monitor.IsOnline() {
		err := bp.processItem(ctx, item)
		if err == nil {
			return nil
		}
		bp.logger.Warn("immediate processing failed, buffering", zap.Error(err))
	}
	return bp.store.Enqueue(item)
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) purgeExpired() {
	removed, err := bp.store.Cleanup(time.Now().Add(-bp.cfg.Retention))
	if err != nil {
		bp.logger.Error("buffer cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		bp.logger.Warn("expired buffer items dropped", zap.Int("count", removed))
	}
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch item.Entity {
	case buffer.EntityTask:
		switch item.Operation {
		case buffer.OperationCreate, buffer.OperationUpdate:
			var task domain.Task
			if err := sonic.Unmarshal(item.Data, &task); err != nil {
				return err
			}
			return bp.tasks.Save(ctx, &task)
		case buffer.OperationDelete:
			return bp.tasks.Delete(ctx, item.EntityID)
		}

	case buffer.EntityProject:
		switch item.Operation {
		case buffer.OperationCreate, buffer.OperationUpdate:
			var project domain.Project
			if err := sonic.Unmarshal(item.Data, &project); err != nil {
				return err
			}
			return bp.projects.Save(ctx, &project)
		case buffer.OperationDelete:
			return bp.projects.Delete(ctx, item.EntityID)
		}

	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
	return fmt.Errorf("unsupported operation %s", item.Operation)
}

// isSettled reports errors that replaying cannot fix, such as deleting an already missing row.
func isSettled(err error) bool {
	return domain.IsDomainError(err, domain.ErrCodeNotFound) || domain.IsDomainError(err, domain.ErrCodeInvalid)
}
