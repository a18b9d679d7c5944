package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"job-portal/internal/portal/domain/model"
	"job-portal/internal/portal/domain/repository"
	"job-portal/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// RedisEventStore keeps one Redis stream per job, keyed job:<id>:applications.
type RedisEventStore struct {
	client *redis.Client
	maxLen int64
	logger logger.Logger
}

// NewRedisEventStore creates a store that trims each stream to roughly maxLen entries.
func NewRedisEventStore(client *redis.Client, maxLen int64, log logger.Logger) *RedisEventStore {
	if log == nil {
		log = logger.NewLogger()
	}
	return &RedisEventStore{
		client: client,
		maxLen: maxLen,
		logger: log.WithComponent("redis_event_store"),
	}
}

// Append adds the event to its job's stream and records the stream id on it.
func (r *RedisEventStore) Append(ctx context.Context, event *model.ApplicationEvent) error {
	stream := model.StreamKey(event.JobID)

	id, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"id":             event.ID,
			"type":           string(event.Type),
			"job_id":         event.JobID,
			"application_id": event.ApplicationID,
			"status":         event.Status,
			"count":          event.Count,
			"timestamp":      event.Timestamp.UnixNano(),
		},
	}).Result()
	if err != nil {
		r.logger.WithFields(map[string]interface{}{
			"stream": stream,
			"type":   event.Type,
		}).Errorf("failed to append event: %v", err)
		return fmt.Errorf("failed to append event to %s: %w", stream, err)
	}

	event.StreamID = id
	r.logger.WithContext(ctx).Debugf("event %s stored in %s at %s", event.Type, stream, id)
	return nil
}

// Since returns the events stored after streamID, oldest first.
func (r *RedisEventStore) Since(ctx context.Context, jobID, streamID string) ([]*model.ApplicationEvent, error) {
	stream := model.StreamKey(jobID)
	start := "-"
	if streamID != "" {
		start = "(" + streamID
	}

	msgs, err := r.client.XRange(ctx, stream, start, "+").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*model.ApplicationEvent{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", stream, err)
	}

	events := make([]*model.ApplicationEvent, 0, len(msgs))
	for _, msg := range msgs {
		events = append(events, parseEvent(msg))
	}
	return events, nil
}

// Len returns the number of entries in a job's stream.
func (r *RedisEventStore) Len(ctx context.Context, jobID string) (int64, error) {
	return r.client.XLen(ctx, model.StreamKey(jobID)).Result()
}

func parseEvent(msg redis.XMessage) *model.ApplicationEvent {
	event := &model.ApplicationEvent{StreamID: msg.ID}

	if v, ok := msg.Values["id"].(string); ok {
		event.ID = v
	}
	if v, ok := msg.Values["type"].(string); ok {
		event.Type = model.ApplicationEventType(v)
	}
	if v, ok := msg.Values["job_id"].(string); ok {
		event.JobID = v
	}
	if v, ok := msg.Values["application_id"].(string); ok {
		event.ApplicationID = v
	}
	if v, ok := msg.Values["status"].(string); ok {
		event.Status = v
	}
	if v, ok := msg.Values["count"].(string); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			event.Count = n
		}
	}
	if v, ok := msg.Values["timestamp"].(string); ok {
		if ns, err := strconv.ParseInt(v, 10, 64); err == nil {
			event.Timestamp = time.Unix(0, ns)
		}
	}
	return event
}

var _ repository.EventStore = (*RedisEventStore)(nil)
