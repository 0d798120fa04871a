package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"sitekeeper/internal/model"
	"sitekeeper/internal/site"
)

// RedisQueue pushes screenshot jobs onto a Redis list consumed by the
// screenshot worker. Jobs are JSON payloads; the worker pops from the other
// end, so ordering is first-changed first-captured.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue connects to Redis and verifies the connection with a ping.
func NewRedisQueue(ctx context.Context, addr, password string, db int, key string) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisQueue{client: client, key: key}, nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, job model.ScreenshotJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding screenshot job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("pushing screenshot job: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Compile-time check that RedisQueue implements site.ScreenshotQueue
var _ site.ScreenshotQueue = (*RedisQueue)(nil)
