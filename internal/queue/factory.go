package queue

import (
	"context"
	"fmt"

	"sitekeeper/internal/config"
	"sitekeeper/internal/site"
)

// NewQueueFromConfig creates a screenshot queue based on the config type.
func NewQueueFromConfig(ctx context.Context, cfg config.ScreenshotConfig) (site.ScreenshotQueue, error) {
	switch cfg.Type {
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis_addr required for redis screenshot queue")
		}
		return NewRedisQueue(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.QueueKey)
	case "memory":
		return NewMemoryQueue(), nil
	default:
		return nil, fmt.Errorf("unknown screenshot queue type: %s", cfg.Type)
	}
}
