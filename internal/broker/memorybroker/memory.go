// Package memorybroker implements broker.Broker and broker.ResultStore
// over in-process Go channels and maps, for tests and single-process
// deployments that don't need a separate queue service.
package memorybroker

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/ga4gh/anyvar/internal/broker"
)

// Broker is an in-memory broker.Broker backed by a buffered channel.
// A task Consumed but not yet Acked is tracked in inflight; Nack
// re-enqueues it with a fresh DeliveryID.
type Broker struct {
	tasks   chan broker.Task
	mu      sync.Mutex
	inflight map[string]broker.Task
	seq     atomic.Uint64
	closed  chan struct{}
}

// New creates a Broker with the given channel capacity.
func New(capacity int) *Broker {
	return &Broker{
		tasks:    make(chan broker.Task, capacity),
		inflight: make(map[string]broker.Task),
		closed:   make(chan struct{}),
	}
}

func (b *Broker) nextDeliveryID() string {
	return strconv.FormatUint(b.seq.Add(1), 10)
}

func (b *Broker) Submit(ctx context.Context, task broker.Task) error {
	task.DeliveryID = b.nextDeliveryID()
	select {
	case b.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.closed:
		return errBrokerClosed
	}
}

func (b *Broker) Consume(ctx context.Context) (broker.Task, error) {
	select {
	case task, ok := <-b.tasks:
		if !ok {
			return broker.Task{}, broker.ErrNoTask
		}
		b.mu.Lock()
		b.inflight[task.DeliveryID] = task
		b.mu.Unlock()
		return task, nil
	case <-ctx.Done():
		return broker.Task{}, broker.ErrNoTask
	case <-b.closed:
		return broker.Task{}, broker.ErrNoTask
	}
}

func (b *Broker) Ack(_ context.Context, task broker.Task) error {
	b.mu.Lock()
	delete(b.inflight, task.DeliveryID)
	b.mu.Unlock()
	return nil
}

// Nack re-enqueues task under a fresh DeliveryID so a subsequent
// Consume redelivers it.
func (b *Broker) Nack(ctx context.Context, task broker.Task) error {
	b.mu.Lock()
	delete(b.inflight, task.DeliveryID)
	b.mu.Unlock()
	return b.Submit(ctx, task)
}

func (b *Broker) Close() error {
	close(b.closed)
	return nil
}

var errBrokerClosed = brokerClosedError{}

type brokerClosedError struct{}

func (brokerClosedError) Error() string { return "memorybroker: broker closed" }

// ResultStore is an in-memory broker.ResultStore backed by a mutex-guarded map.
type ResultStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewResultStore creates an empty ResultStore.
func NewResultStore() *ResultStore {
	return &ResultStore{data: make(map[string][]byte)}
}

func (s *ResultStore) Set(_ context.Context, runID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[runID] = append([]byte(nil), data...)
	return nil
}

func (s *ResultStore) Get(_ context.Context, runID string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *ResultStore) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}
