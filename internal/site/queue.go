package site

import (
	"context"

	"sitekeeper/internal/model"
)

// ScreenshotQueue hands screenshot jobs to the asynchronous capture worker.
// Enqueue is fire-and-forget from the core's point of view: no response from
// the consumer is awaited.
type ScreenshotQueue interface {
	Enqueue(ctx context.Context, job model.ScreenshotJob) error
}
