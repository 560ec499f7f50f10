// Package broker defines the task queue abstraction the async VCF
// ingest worker consumes from: submit a task, consume one at a time,
// ack on durable success, nack to make it visible for redelivery. A
// ResultStore alongside it holds small run-status records keyed by
// run id. Two implementations satisfy both interfaces: memorybroker
// (buffered channel, for tests and single-process deployments) and
// redisbroker (Redis Streams with a consumer group, for anything that
// needs workers on separate processes/hosts).
package broker

import (
	"context"
	"errors"
)

// ErrNoTask is returned by Consume when no task is available within
// the given context's deadline.
var ErrNoTask = errors.New("broker: no task available")

// Task is one unit of ingest work: a VCF file to register and
// annotate. DeliveryID identifies this specific delivery attempt so
// Ack/Nack can reference it. A Nack re-enqueues the Task under a new
// DeliveryID; a Task that redisbroker reclaims from a crashed consumer
// keeps its original DeliveryID. RunID is unchanged in both cases.
type Task struct {
	RunID      string
	InputPath  string
	OutputPath string
	DeliveryID string
}

// Broker is the submit/consume/ack/nack contract the async job queue
// runs on. Consume blocks (respecting ctx) until a task is available
// or returns ErrNoTask if ctx is done first. Ack is late: the worker
// calls it only after the task's side effects are durable, so a crash
// between Consume and Ack redelivers the task.
type Broker interface {
	Submit(ctx context.Context, task Task) error
	Consume(ctx context.Context) (Task, error)
	Ack(ctx context.Context, task Task) error
	Nack(ctx context.Context, task Task) error
	Close() error
}

// ResultStore holds Run status records keyed by run id, independent
// of the Broker's own delivery bookkeeping.
type ResultStore interface {
	Set(ctx context.Context, runID string, data []byte) error
	Get(ctx context.Context, runID string) ([]byte, bool, error)
	Delete(ctx context.Context, runID string) error
}
