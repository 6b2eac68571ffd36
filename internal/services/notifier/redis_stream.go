package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	goRedis "github.com/redis/go-redis/v9"

	"golang-admin-command-runner/internal/models"
	"golang-admin-command-runner/pkg/redis"
)

// RedisStreamPublisher appends every event to a redis stream as a JSON
// "payload" field.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisStreamPublisher(client *redis.Client, stream string) *RedisStreamPublisher {
	if stream == "" {
		stream = models.RedisStreamCommandRuns
	}
	return &RedisStreamPublisher{client: client, stream: stream}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, event models.CommandRunEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal command run event: %w", err)
	}
	if err := p.client.XAdd(ctx, &goRedis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{"payload": payload},
	}).Err(); err != nil {
		return fmt.Errorf("failed to add command run event to stream %s: %w", p.stream, err)
	}
	return nil
}
