package notification

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	appLogger "github.com/fastygo/tracker/pkg/logger"
)

const tracerName = "github.com/fastygo/tracker/internal/notification"

// Subscriber receives every event published while it is attached.
// The dispatcher tracks subscribers by identity, so implementations must be
// comparable. Values with uncomparable dynamic types are refused by Attach.
type Subscriber interface {
	Receive(ctx context.Context, event domain.NotificationEvent) error
}

// Publisher is the side of the dispatcher the use cases depend on.
type Publisher interface {
	Publish(ctx context.Context, event domain.NotificationEvent)
}

// Dispatcher relays events to subscribers synchronously, in attach order.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	logger      *zap.Logger
	tracer      trace.Tracer
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// WithTracer replaces the tracer taken from the global provider.
func (d *Dispatcher) WithTracer(tracer trace.Tracer) *Dispatcher {
	if tracer != nil {
		d.tracer = tracer
	}
	return d
}

// Attach registers s. Attaching the same subscriber twice is a no-op.
func (d *Dispatcher) Attach(s Subscriber) {
	if s == nil {
		return
	}
	if !isComparable(s) {
		d.logger.Warn("subscriber is not comparable, skipping",
			zap.String("subscriber", fmt.Sprintf("%T", s)))
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.indexOf(s) >= 0 {
		return
	}
	d.subscribers = append(d.subscribers, s)
}

// Detach removes s if present.
func (d *Dispatcher) Detach(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i := d.indexOf(s); i >= 0 {
		d.subscribers = append(d.subscribers[:i:i], d.subscribers[i+1:]...)
	}
}

// Len returns the number of attached subscribers.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers)
}

// Publish hands event to every attached subscriber. Subscriber errors and
// panics are logged and never reach the caller or the other subscribers.
func (d *Dispatcher) Publish(ctx context.Context, event domain.NotificationEvent) {
	if event == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	subscribers := make([]Subscriber, len(d.subscribers))
	copy(subscribers, d.subscribers)
	d.mu.RUnlock()

	ctx, span := d.tracer.Start(ctx, "notification.publish",
		trace.WithAttributes(
			attribute.String("notification.type", string(event.Type())),
			attribute.Int("notification.subscribers", len(subscribers)),
		))
	defer span.End()

	log := appLogger.WithRequestID(ctx, d.logger)
	failed := 0
	for _, s := range subscribers {
		if err := deliver(ctx, s, event); err != nil {
			failed++
			log.Error("notification subscriber failed",
				zap.String("event", string(event.Type())),
				zap.String("subscriber", fmt.Sprintf("%T", s)),
				zap.Error(err))
		}
	}

	span.SetAttributes(attribute.Int("notification.failed", failed))
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d subscriber(s) failed", failed))
	}
}

func deliver(ctx context.Context, s Subscriber, event domain.NotificationEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()
	return s.Receive(ctx, event)
}

func (d *Dispatcher) indexOf(s Subscriber) int {
	if s == nil || !isComparable(s) {
		return -1
	}
	for i, existing := range d.subscribers {
		if existing == s {
			return i
		}
	}
	return -1
}

func isComparable(s Subscriber) bool {
	return reflect.TypeOf(s).Comparable()
}

var _ Publisher = (*Dispatcher)(nil)
