package usecase

import (
	"context"
	"sync"

	"job-portal/internal/portal/domain/model"
	"job-portal/internal/portal/domain/repository"
	"job-portal/internal/shared/eventbus"
	"job-portal/internal/shared/logger"
)

// RealtimeUsecase fans application events out to listeners of a job.
type RealtimeUsecase interface {
	// Subscribe registers ch for events of jobID. The caller owns ch and closes
	// it only after Unsubscribe returns.
	Subscribe(ctx context.Context, subscriberID, jobID string, ch chan<- *model.ApplicationEvent) error
	Unsubscribe(ctx context.Context, subscriberID, jobID string) error
	// PublishEvent delivers ev to every listener of ev.JobID without blocking.
	PublishEvent(ctx context.Context, ev *model.ApplicationEvent) error
	// Replay returns the stored events after streamID, or nil when no store is configured.
	Replay(ctx context.Context, jobID, streamID string) ([]*model.ApplicationEvent, error)
	SubscriberCount(jobID string) int
}

type realtimeUsecaseImpl struct {
	subscriptions map[string]map[string]chan<- *model.ApplicationEvent
	mu            sync.RWMutex
	store         repository.EventStore
	log           logger.Logger
}

// NewRealtimeUsecase creates the in-process listener registry. store may be nil.
func NewRealtimeUsecase(store repository.EventStore, log logger.Logger) RealtimeUsecase {
	if log == nil {
		log = logger.NewLogger()
	}
	return &realtimeUsecaseImpl{
		subscriptions: make(map[string]map[string]chan<- *model.ApplicationEvent),
		store:         store,
		log:           log.WithComponent("realtime"),
	}
}

func (uc *realtimeUsecaseImpl) Subscribe(ctx context.Context, subscriberID, jobID string, ch chan<- *model.ApplicationEvent) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, ok := uc.subscriptions[jobID]; !ok {
		uc.subscriptions[jobID] = make(map[string]chan<- *model.ApplicationEvent)
	}
	if _, ok := uc.subscriptions[jobID][subscriberID]; ok {
		uc.log.Warnf("subscriber %s already listening to job %s, replacing channel", subscriberID, jobID)
	}
	uc.subscriptions[jobID][subscriberID] = ch
	uc.log.Debugf("subscriber %s listening to job %s", subscriberID, jobID)
	return nil
}

func (uc *realtimeUsecaseImpl) Unsubscribe(ctx context.Context, subscriberID, jobID string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	subscribers, ok := uc.subscriptions[jobID]
	if !ok {
		return nil
	}
	delete(subscribers, subscriberID)
	if len(subscribers) == 0 {
		delete(uc.subscriptions, jobID)
	}
	uc.log.Debugf("subscriber %s stopped listening to job %s", subscriberID, jobID)
	return nil
}

func (uc *realtimeUsecaseImpl) PublishEvent(ctx context.Context, ev *model.ApplicationEvent) error {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	for subscriberID, ch := range uc.subscriptions[ev.JobID] {
		select {
		case ch <- ev:
		default:
			uc.log.Warnf("dropping %s event for slow subscriber %s on job %s", ev.Type, subscriberID, ev.JobID)
		}
	}
	return nil
}

func (uc *realtimeUsecaseImpl) Replay(ctx context.Context, jobID, streamID string) ([]*model.ApplicationEvent, error) {
	if uc.store == nil {
		return nil, nil
	}
	return uc.store.Since(ctx, jobID, streamID)
}

func (uc *realtimeUsecaseImpl) SubscriberCount(jobID string) int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return len(uc.subscriptions[jobID])
}

// AttachEventHandlers routes portal bus events to listeners. When store is
// non-nil each event is appended first so listeners see its stream id; a
// store failure is logged and the event is still delivered.
func AttachEventHandlers(bus eventbus.EventBusInterface, rt RealtimeUsecase, store repository.EventStore, log logger.Logger) {
	if log == nil {
		log = logger.NewLogger()
	}
	log = log.WithComponent("event_router")

	for _, eventType := range ApplicationEventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event eventbus.Event) error {
			ev, ok := ApplicationEventFrom(event)
			if !ok {
				log.Warnf("unexpected payload %T for %s", event.Data(), event.Type())
				return nil
			}
			if store != nil {
				// Append stamps StreamID; the publisher's copy stays untouched.
				stored := *ev
				if err := store.Append(ctx, &stored); err != nil {
					log.WithContext(ctx).Errorf("append %s event for job %s: %v", ev.Type, ev.JobID, err)
				} else {
					ev = &stored
				}
			}
			return rt.PublishEvent(ctx, ev)
		})
	}
}
