package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tracker/api/handler"
	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/config"
	"github.com/fastygo/tracker/internal/infrastructure/filestore"
	"github.com/fastygo/tracker/internal/infrastructure/tracing"
	"github.com/fastygo/tracker/internal/middleware"
	"github.com/fastygo/tracker/internal/notification"
	"github.com/fastygo/tracker/internal/router"
	"github.com/fastygo/tracker/internal/services/lifecycle"
	"github.com/fastygo/tracker/pkg/httpcontext"
	"github.com/fastygo/tracker/pkg/logger"
	authUC "github.com/fastygo/tracker/usecase/auth"
	notificationUC "github.com/fastygo/tracker/usecase/notification"
	profileUC "github.com/fastygo/tracker/usecase/profile"
	projectUC "github.com/fastygo/tracker/usecase/project"
	taskUC "github.com/fastygo/tracker/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.Listen(context.Background())
	defer cancel()

	shutdownTracing := tracing.Setup(cfg.Tracing, zapLogger)
	manager.Register("tracing", shutdownTracing)

	store, err := openStorage(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage init failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	files, err := filestore.NewLocal(cfg.Storage.UploadsDir, zapLogger)
	if err != nil {
		zapLogger.Fatal("uploads dir unavailable", zap.Error(err))
	}

	dispatcher := notification.NewDispatcher(zapLogger)
	dispatcher.Attach(notification.NewInAppSubscriber(store.notifications, store.tasks, zapLogger))
	dispatcher.Attach(notification.NewEmailSubscriber(newMailer(cfg.SMTP, zapLogger), zapLogger))

	resolver := newStatusResolver(cfg.Tracker.StatusPolicy, zapLogger)

	authUseCase := authUC.New(store.users, store.sessions, authUC.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}, zapLogger)
	profileUseCase := profileUC.New(store.users, zapLogger)
	projectUseCase := projectUC.New(store.projects, store.users, dispatcher, store.buffer, zapLogger)
	taskUseCase := taskUC.New(taskUC.Deps{
		Tasks:       store.tasks,
		Subtasks:    store.subtasks,
		Comments:    store.comments,
		Attachments: store.attachments,
		Projects:    store.projects,
		Users:       store.users,
		Files:       files,
		Resolver:    resolver,
		Publisher:   dispatcher,
		Buffer:      store.buffer,
	}, zapLogger)
	notificationUseCase := notificationUC.New(store.notifications, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:         apiHandler.NewAuthHandler(authUseCase, profileUseCase, ctxAdapter, zapLogger, cfg.Tracker.SessionTTL),
		Profile:      apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Project:      apiHandler.NewProjectHandler(projectUseCase, ctxAdapter, zapLogger),
		Task:         apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Notification: apiHandler.NewNotificationHandler(notificationUseCase, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(store.monitor, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware, cfg.Storage.UploadsDir)

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		MaxRequestBodySize: maxRequestBodySize,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

const maxRequestBodySize = 12 << 20

func newMailer(cfg config.SMTPConfig, logger *zap.Logger) notification.Mailer {
	if cfg.Host == "" {
		logger.Info("SMTP_HOST not set, emails are logged instead of sent")
		return notification.NewLogMailer(logger)
	}
	return notification.NewSMTPMailer(notification.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		Password: cfg.Password,
		From:     cfg.From,
		Timeout:  cfg.Timeout,
	})
}

// newStatusResolver falls back to the default policy when name is unknown.
func newStatusResolver(name string, logger *zap.Logger) *domain.StatusResolver {
	policy, ok := domain.LookupPolicy(name)
	if !ok {
		logger.Warn("unknown status policy, using default", zap.String("requested", name))
	}
	resolver := domain.NewStatusResolver(policy)
	logger.Info("status policy selected", zap.String("policy", resolver.Policy().Name()))
	return resolver
}
