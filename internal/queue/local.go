package queue

import (
	"context"
	"sync"
	"time"

	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/telemetry"
)

// LocalQueue is an in-process fallback used when SQS is not configured.
// Messages are consumed by a goroutine inside the API process, which keeps
// the submit/enqueue/process flow intact in development.
type LocalQueue struct {
	ch          chan Message
	maxAttempts int

	droppedMu sync.Mutex
	dropped   []Message
}

// NewLocalQueue constructs a LocalQueue.
func NewLocalQueue(bufferSize, maxAttempts int) *LocalQueue {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &LocalQueue{
		ch:          make(chan Message, bufferSize),
		maxAttempts: maxAttempts,
	}
}

// Send enqueues the message for the in-process consumer.
func (q *LocalQueue) Send(ctx context.Context, msg Message) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- msg:
		return nil
	}
}

// Consume delivers messages to handler until ctx is canceled. A failing
// handler is retried with a short delay up to maxAttempts before the message
// is dropped; this mirrors queue-level redelivery in production.
func (q *LocalQueue) Consume(ctx context.Context, handler func(context.Context, Message) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-q.ch:
			q.deliver(ctx, msg, handler)
		}
	}
}

// Dropped returns messages that exhausted their delivery attempts.
func (q *LocalQueue) Dropped() []Message {
	q.droppedMu.Lock()
	defer q.droppedMu.Unlock()
	return append([]Message(nil), q.dropped...)
}

func (q *LocalQueue) deliver(ctx context.Context, msg Message, handler func(context.Context, Message) error) {
	var err error
	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return
		}
		telemetry.Error("queue.local.delivery_failed", map[string]any{
			"log_id":  msg.LogID,
			"attempt": attempt,
			"error":   err.Error(),
		})
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
		}
	}

	q.droppedMu.Lock()
	q.dropped = append(q.dropped, msg)
	q.droppedMu.Unlock()
	metrics.IncAnalysisJobsDropped()
}
