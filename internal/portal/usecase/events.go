package usecase

import (
	"context"
	"time"

	"job-portal/internal/portal/domain/model"
	"job-portal/internal/shared/eventbus"

	"github.com/google/uuid"
)

const eventSource = "portal"

// ApplicationEventTypes are the bus event types that carry a *model.ApplicationEvent.
var ApplicationEventTypes = []string{
	eventbus.EventTypeApplicationSubmitted,
	eventbus.EventTypeApplicationWithdrawn,
	eventbus.EventTypeApplicationStatusChanged,
	eventbus.EventTypeJobDeleted,
}

type publisher struct {
	bus eventbus.EventBusInterface
	now func() time.Time
}

func (p publisher) publish(ctx context.Context, eventType string, ev *model.ApplicationEvent) {
	if p.bus == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.Timestamp = p.now()
	p.bus.PublishAndForget(context.WithoutCancel(ctx), eventbus.NewBasicEventWithSource(eventType, ev, eventSource))
}

func (p publisher) publishData(ctx context.Context, eventType string, data interface{}) {
	if p.bus == nil {
		return
	}
	p.bus.PublishAndForget(context.WithoutCancel(ctx), eventbus.NewBasicEventWithSource(eventType, data, eventSource))
}

// ApplicationEventFrom extracts the payload of a portal bus event.
func ApplicationEventFrom(event eventbus.Event) (*model.ApplicationEvent, bool) {
	ev, ok := event.Data().(*model.ApplicationEvent)
	return ev, ok && ev != nil
}
