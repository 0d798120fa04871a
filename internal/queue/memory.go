package queue

import (
	"context"
	"sync"

	"sitekeeper/internal/model"
	"sitekeeper/internal/site"
)

// MemoryQueue collects screenshot jobs in memory. It backs tests and
// single-process setups that run the capture worker in the same binary.
type MemoryQueue struct {
	mu   sync.Mutex
	jobs []model.ScreenshotJob
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Enqueue(_ context.Context, job model.ScreenshotJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

// Jobs returns a copy of everything enqueued so far, oldest first.
func (q *MemoryQueue) Jobs() []model.ScreenshotJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.ScreenshotJob, len(q.jobs))
	copy(out, q.jobs)
	return out
}

// Compile-time check that MemoryQueue implements site.ScreenshotQueue
var _ site.ScreenshotQueue = (*MemoryQueue)(nil)
