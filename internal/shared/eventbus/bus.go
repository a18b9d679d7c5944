package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"job-portal/internal/shared/logger"
)

// Event types published by the portal and auth modules.
const (
	EventTypeJobCreated               = "job.created"
	EventTypeJobDeleted               = "job.deleted"
	EventTypeApplicationSubmitted     = "application.submitted"
	EventTypeApplicationStatusChanged = "application.status_changed"
	EventTypeApplicationWithdrawn     = "application.withdrawn"
	EventTypeSessionIssued            = "session.issued"
	EventTypeSessionCleared           = "session.cleared"
	EventTypeAccessDenied             = "auth.access_denied"
)

// Event is a notification passed between modules.
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler reacts to one event. A returned error makes the bus retry it.
type Handler func(ctx context.Context, event Event) error

// EventBusInterface is what the modules need to publish and subscribe.
type EventBusInterface interface {
	Subscribe(eventType string, handler Handler)
	Publish(ctx context.Context, event Event) error
	PublishAndForget(ctx context.Context, event Event)
}

// BusConfig controls per-handler retries.
type BusConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultBusConfig retries a failing handler twice, 50ms apart.
func DefaultBusConfig() BusConfig {
	return BusConfig{MaxRetries: 2, RetryDelay: 50 * time.Millisecond}
}

// EventBus delivers events in-process. Handlers of one event run in
// subscription order; a failing handler does not stop the ones after it.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	log         logger.Logger
	cfg         BusConfig
	inflight    sync.WaitGroup
}

// NewEventBus creates a bus with DefaultBusConfig. log may be nil.
func NewEventBus(log logger.Logger) *EventBus {
	return NewEventBusWithConfig(log, DefaultBusConfig())
}

// NewEventBusWithConfig creates a bus with custom retry settings.
func NewEventBusWithConfig(log logger.Logger, cfg BusConfig) *EventBus {
	if log == nil {
		log = logger.NewNop()
	}
	cfg.MaxRetries = max(cfg.MaxRetries, 0)
	return &EventBus{subscribers: map[string][]Handler{}, log: log, cfg: cfg}
}

// Subscribe appends handler to the list run for eventType.
func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
	n := len(eb.subscribers[eventType])
	eb.mu.Unlock()

	eb.log.Debugf("%s now has %d subscriber(s)", eventType, n)
}

// Publish runs every handler of event.Type() and returns their joined errors.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	subs := append([]Handler(nil), eb.subscribers[event.Type()]...)
	eb.mu.RUnlock()

	var errs []error
	for i, h := range subs {
		if err := eb.deliver(ctx, event, h, i); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// deliver runs one subscriber, retrying up to cfg.MaxRetries times.
func (eb *EventBus) deliver(ctx context.Context, event Event, h Handler, idx int) error {
	attempts := eb.cfg.MaxRetries + 1
	var err error
	for n := 1; n <= attempts; n++ {
		if err = invoke(ctx, event, h); err == nil {
			return nil
		}
		eb.log.WithFields(map[string]interface{}{
			"event":      event.Type(),
			"subscriber": idx,
			"attempt":    n,
		}).Warnf("subscriber failed: %v", err)

		if n == attempts {
			break
		}
		if werr := sleep(ctx, eb.cfg.RetryDelay); werr != nil {
			return fmt.Errorf("subscriber %d of %s: %w (last error: %v)", idx, event.Type(), werr, err)
		}
	}
	return fmt.Errorf("subscriber %d of %s failed after %d attempts: %w", idx, event.Type(), attempts, err)
}

func invoke(ctx context.Context, event Event, handler Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, event)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PublishAndForget publishes on a new goroutine and only logs failures.
// Drain waits for these goroutines.
func (eb *EventBus) PublishAndForget(ctx context.Context, event Event) {
	eb.inflight.Add(1)
	go func() {
		defer eb.inflight.Done()
		if err := eb.Publish(ctx, event); err != nil {
			eb.log.Errorf("background publish of %s: %v", event.Type(), err)
		}
	}()
}

// Drain blocks until every PublishAndForget call has finished or ctx is done.
func (eb *EventBus) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		eb.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus drain: %w", ctx.Err())
	}
}

// BasicEvent is the Event every module publishes.
type BasicEvent struct {
	kind   string
	data   interface{}
	at     time.Time
	source string
}

// NewBasicEvent creates an event without a source.
func NewBasicEvent(eventType string, data interface{}) Event {
	return NewBasicEventWithSource(eventType, data, "")
}

// NewBasicEventWithSource creates an event tagged with the publishing module.
func NewBasicEventWithSource(eventType string, data interface{}, source string) Event {
	return &BasicEvent{kind: eventType, data: data, at: time.Now(), source: source}
}

func (e *BasicEvent) Type() string         { return e.kind }
func (e *BasicEvent) Data() interface{}    { return e.data }
func (e *BasicEvent) Timestamp() time.Time { return e.at }
func (e *BasicEvent) Source() string       { return e.source }

var _ EventBusInterface = (*EventBus)(nil)
