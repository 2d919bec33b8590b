package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ChannelPrefix namespaces the pub/sub channels booking changes are
// fanned out on; interested clients subscribe to refresh their views.
const ChannelPrefix = "roomdesk:events:"

// RedisPublisher mirrors bus events onto Redis pub/sub so processes
// outside this one can observe booking changes.
type RedisPublisher struct {
	client *redis.Client
	logger *zerolog.Logger
}

func NewRedisPublisher(client *redis.Client, logger *zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, logger: logger}
}

func (p *RedisPublisher) PublishJSON(eventType string, payload interface{}) error {
	if p == nil || p.client == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	if err := p.client.Publish(context.Background(), ChannelPrefix+eventType, raw).Err(); err != nil {
		return fmt.Errorf("failed to publish event to redis: %w", err)
	}
	return nil
}

// Fanout publishes to every wrapped publisher, logging instead of
// failing when one of them is down. A broken refresh channel must not
// break the operation that produced the event.
type Fanout struct {
	publishers []interface {
		PublishJSON(eventType string, payload interface{}) error
	}
	logger *zerolog.Logger
}

func NewFanout(logger *zerolog.Logger, publishers ...interface {
	PublishJSON(eventType string, payload interface{}) error
}) *Fanout {
	return &Fanout{publishers: publishers, logger: logger}
}

func (f *Fanout) PublishJSON(eventType string, payload interface{}) error {
	for _, pub := range f.publishers {
		if pub == nil {
			continue
		}
		if err := pub.PublishJSON(eventType, payload); err != nil {
			f.logger.Error().Err(err).Str("event_type", eventType).Msg("event publish error")
		}
	}
	return nil
}
