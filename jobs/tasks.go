package jobs

import (
	"context"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInsightRefresh regenerates the cached business insight.
	TaskInsightRefresh = "insight:refresh"
)

// NewInsightRefreshTask constructs the insight refresh task. The task
// carries no payload; the handler reads live state from the store.
func NewInsightRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskInsightRefresh, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
}

// Client enqueues background tasks from the HTTP process.
type Client struct {
	inner *asynq.Client
}

// NewClient wraps an Asynq client for task submission.
func NewClient(opts asynq.RedisClientOpt) *Client {
	return &Client{inner: asynq.NewClient(opts)}
}

// EnqueueInsightRefresh schedules a single insight regeneration.
func (c *Client) EnqueueInsightRefresh(ctx context.Context) error {
	_, err := c.inner.EnqueueContext(ctx, NewInsightRefreshTask())
	return err
}

// Close releases the underlying Redis connection.
func (c *Client) Close() error {
	return c.inner.Close()
}
