package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Check probes one dependency. Critical checks decide IsOnline.
type Check struct {
	Name     string
	Timeout  time.Duration
	Critical bool
	Probe    func(ctx context.Context) error
}

// Sizer reports the number of buffered writes.
type Sizer interface {
	Size() (int, error)
}

func PostgresCheck(pool *pgxpool.Pool) Check {
	return Check{Name: "postgresql", Timeout: 3 * time.Second, Critical: true, Probe: pool.Ping}
}

func RedisCheck(client redislib.UniversalClient) Check {
	return Check{
		Name:     "redis",
		Timeout:  2 * time.Second,
		Critical: true,
		Probe: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}

func BufferCheck(buf Sizer) Check {
	return Check{
		Name:    "buffer",
		Timeout: time.Second,
		Probe: func(context.Context) error {
			_, err := buf.Size()
			return err
		},
	}
}

type Monitor struct {
	checks []Check
	buffer Sizer

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(checks []Check, buf Sizer, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   checks,
		buffer:   buf,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for k, v := range m.status.Services {
		services[k] = v
	}
	status := m.status
	status.Services = services
	return status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe concurrently and publishes the combined status.
func (m *Monitor) Refresh(ctx context.Context) Status {
	results := make([]bool, len(m.checks))

	var g errgroup.Group
	for i, check := range m.checks {
		i, check := i, check
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, check.Timeout)
			defer cancel()
			if err := check.Probe(probeCtx); err != nil {
				m.logger.Warn("health probe failed", zap.String("service", check.Name), zap.Error(err))
				return nil
			}
			results[i] = true
			return nil
		})
	}
	_ = g.Wait()

	status := Status{
		Services:  make(map[string]bool, len(m.checks)),
		Online:    true,
		LastCheck: time.Now(),
	}
	for i, check := range m.checks {
		status.Services[check.Name] = results[i]
		if check.Critical && !results[i] {
			status.Online = false
		}
	}
	if m.buffer != nil {
		if size, err := m.buffer.Size(); err == nil {
			status.BufferSize = size
		}
	}

	m.mu.Lock()
	if m.status.Online != status.Online && !m.status.LastCheck.IsZero() {
		m.logger.Info("connectivity changed", zap.Bool("online", status.Online))
	}
	m.status = status
	m.mu.Unlock()
	return status
}
