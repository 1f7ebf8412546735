package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/internal/config"
	"github.com/fastygo/tracker/internal/infrastructure/buffer"
	"github.com/fastygo/tracker/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/tracker/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/tracker/internal/infrastructure/redis"
	"github.com/fastygo/tracker/internal/services"
	"github.com/fastygo/tracker/internal/services/lifecycle"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/repository/memory"
	"github.com/fastygo/tracker/repository/postgres"
	redisRepo "github.com/fastygo/tracker/repository/redis"
	"github.com/fastygo/tracker/usecase"
)

const monitorInterval = 10 * time.Second

// storage bundles the repositories of the selected driver together with the
// health monitor and the offline buffer (nil on the memory driver).
type storage struct {
	users         repository.UserRepository
	tasks         repository.TaskRepository
	subtasks      repository.SubtaskRepository
	projects      repository.ProjectRepository
	comments      repository.CommentRepository
	attachments   repository.AttachmentRepository
	sessions      repository.SessionRepository
	notifications repository.NotificationRepository

	monitor *monitor.Monitor
	buffer  usecase.OperationBuffer
}

func openStorage(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		return openMemory(cfg, manager, logger), nil
	case config.StorageDriverPostgres:
		return openPostgres(ctx, cfg, manager, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openMemory(cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) *storage {
	store := memory.NewStore()
	store.SetInboxSize(cfg.Tracker.InboxSize)

	mon := monitor.New(nil, nil, monitorInterval, logger)
	startMonitor(mon, manager)

	logger.Warn("using in-memory storage, data is lost on restart")
	return &storage{
		users:         store.Users(),
		tasks:         store.Tasks(),
		subtasks:      store.Subtasks(),
		projects:      store.Projects(),
		comments:      store.Comments(),
		attachments:   store.Attachments(),
		sessions:      store.Sessions(),
		notifications: store.Notifications(),
		monitor:       mon,
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (*storage, error) {
	if err := pgInfra.RunMigrations(cfg, logger); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	manager.Register("postgres", func(context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	manager.Register("redis", func(context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, buffer.Options{MaxSize: cfg.Buffer.MaxSize})
	if err != nil {
		return nil, fmt.Errorf("buffer: %w", err)
	}
	manager.Register("buffer", func(context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New([]monitor.Check{
		monitor.PostgresCheck(pool),
		monitor.RedisCheck(redisClient),
		monitor.BufferCheck(bufferStore),
	}, bufferStore, monitorInterval, logger)
	startMonitor(mon, manager)

	s := &storage{
		users:         postgres.NewUserRepository(pool),
		tasks:         postgres.NewTaskRepository(pool),
		subtasks:      postgres.NewSubtaskRepository(pool),
		projects:      postgres.NewProjectRepository(pool),
		comments:      postgres.NewCommentRepository(pool),
		attachments:   postgres.NewAttachmentRepository(pool),
		sessions:      redisRepo.NewSessionRepository(redisClient, cfg.Tracker.SessionTTL),
		notifications: redisRepo.NewNotificationRepository(redisClient, cfg.Tracker.InboxSize),
		monitor:       mon,
	}

	processor := services.NewBufferProcessor(
		bufferStore,
		mon,
		s.tasks,
		s.projects,
		logger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	processor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		processor.Stop(ctx)
		return nil
	})
	s.buffer = services.NewBufferBridge(processor)

	return s, nil
}

func startMonitor(mon *monitor.Monitor, manager *lifecycle.Manager) {
	mon.Refresh(context.Background())
	mon.Start()
	manager.Register("monitor", func(context.Context) error {
		mon.Stop()
		return nil
	})
}
