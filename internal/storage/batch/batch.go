// Package batch implements BatchManager/BatchContext: scoped acquisition
// of a background writer and a bounded pending-batches queue, giving
// storage backends bulk-write throughput with natural backpressure. The
// lifecycle mirrors the teacher's worker-pool pattern in
// internal/annotate/parallel.go (a pool of goroutines draining a
// channel, joined via sync.WaitGroup on completion) collapsed to a
// single writer per context, as the design calls for.
package batch

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
	"github.com/ga4gh/anyvar/internal/metrics"
	"github.com/ga4gh/anyvar/internal/vrs"
)

// Writer applies one batch of object puts using the backend's configured
// duplicate-prevention strategy (merge / insert_notin / insert for
// warehouse backends, ON CONFLICT DO NOTHING for relational ones).
type Writer interface {
	ApplyBatch(ctx context.Context, objs []vrs.Object) error
}

// State is the background writer's lifecycle phase.
type State int

const (
	Idle State = iota
	Draining
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Draining:
		return "draining"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a BatchContext.
type Options struct {
	BatchLimit        int  // rows buffered per batch before handoff to the writer
	MaxPendingBatches int  // bound on batches queued ahead of the writer
	FlushOnExit       bool // End(true) is the default exit behavior
}

// DefaultOptions matches the design's defaults (§4.6).
func DefaultOptions() Options {
	return Options{BatchLimit: 100_000, MaxPendingBatches: 50, FlushOnExit: true}
}

// Manager creates BatchContexts around a single Writer.
type Manager struct {
	writer Writer
	logger *zap.Logger
}

// NewManager creates a Manager that hands drained batches to writer.
func NewManager(writer Writer) *Manager {
	return &Manager{writer: writer, logger: zap.NewNop()}
}

// SetLogger sets the logger new Contexts are given.
func (m *Manager) SetLogger(l *zap.Logger) {
	m.logger = l
}

// Begin starts one writer goroutine and a bounded queue, returning a
// Context scoped to ctx's lifetime. Callers must call End on every exit
// path (success, error, or cancellation) to release the writer.
func (m *Manager) Begin(ctx context.Context, opts Options) *Context {
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = DefaultOptions().BatchLimit
	}
	if opts.MaxPendingBatches <= 0 {
		opts.MaxPendingBatches = DefaultOptions().MaxPendingBatches
	}

	cctx, cancel := context.WithCancel(ctx)
	c := &Context{
		writer:  m.writer,
		opts:    opts,
		pending: make(chan []vrs.Object, opts.MaxPendingBatches),
		done:    make(chan struct{}),
		ctx:     cctx,
		cancel:  cancel,
		logger:  m.logger,
	}
	go c.run()
	return c
}

// Context is a single scoped batching session. Put is safe to call from
// one producer goroutine at a time (the design does not require
// cross-producer ordering — §5 — so Context itself does not serialize
// concurrent producers beyond what its internal mutex needs for safety).
type Context struct {
	writer Writer
	opts   Options

	pending chan []vrs.Object
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *zap.Logger

	bufMu sync.Mutex
	buf   []vrs.Object

	mu    sync.Mutex
	state State
	err   error
}

// Put buffers obj for the current batch, handing the batch to the writer
// once it reaches BatchLimit. The handoff blocks when MaxPendingBatches
// batches are already queued ahead of the writer (property 7:
// backpressure) and fails fast with ErrBatchAborted once a prior batch
// has failed (property: BatchAborted poisons the context).
func (c *Context) Put(ctx context.Context, obj vrs.Object) error {
	c.mu.Lock()
	if c.state == Failed {
		err := c.err
		c.mu.Unlock()
		return anyvarWrap(err)
	}
	c.mu.Unlock()

	c.bufMu.Lock()
	c.buf = append(c.buf, obj)
	var full []vrs.Object
	if len(c.buf) >= c.opts.BatchLimit {
		full = c.buf
		c.buf = nil
	}
	c.bufMu.Unlock()

	if full == nil {
		return nil
	}
	return c.enqueue(ctx, full)
}

func (c *Context) enqueue(ctx context.Context, rows []vrs.Object) error {
	c.mu.Lock()
	if c.state == Idle {
		c.state = Draining
	}
	c.mu.Unlock()

	select {
	case c.pending <- rows:
		metrics.BatchQueueDepth.Set(float64(len(c.pending)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the writer's current lifecycle phase.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// End releases the writer. With flush=true (the common, and default,
// case) any buffered-but-not-yet-enqueued rows are sent and End blocks
// until every pending batch has drained, so subsequent reads observe all
// writes issued inside the context. With flush=false, buffered rows and
// any batches still queued ahead of the writer are discarded; End still
// blocks only long enough to join the writer goroutine.
func (c *Context) End(flush bool) error {
	c.bufMu.Lock()
	remaining := c.buf
	c.buf = nil
	c.bufMu.Unlock()

	if !flush {
		c.cancel()
		close(c.pending)
		<-c.done
		return nil
	}

	if len(remaining) > 0 {
		// Use context.Background: flush must complete regardless of
		// whether the caller's ctx has already been cancelled by the
		// time End runs.
		if err := c.enqueue(context.Background(), remaining); err != nil {
			close(c.pending)
			<-c.done
			return err
		}
	}
	close(c.pending)
	<-c.done

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Context) run() {
	defer close(c.done)
	for rows := range c.pending {
		select {
		case <-c.ctx.Done():
			continue
		default:
		}

		c.mu.Lock()
		failed := c.state == Failed
		c.mu.Unlock()
		if failed {
			continue
		}

		if err := c.writer.ApplyBatch(c.ctx, rows); err != nil {
			c.mu.Lock()
			c.state = Failed
			c.err = err
			c.mu.Unlock()
			metrics.WriterState.Set(float64(Failed))
			c.logger.Error("batch apply failed, context poisoned", zap.Error(err))
			continue
		}

		c.mu.Lock()
		if c.state == Draining && len(c.pending) == 0 {
			c.state = Idle
		}
		state := c.state
		c.mu.Unlock()
		metrics.WriterState.Set(float64(state))
		metrics.BatchQueueDepth.Set(float64(len(c.pending)))
	}
}

func anyvarWrap(err error) error {
	if err == nil {
		return anyvarerr.ErrBatchAborted
	}
	return &abortedError{cause: err}
}

type abortedError struct{ cause error }

func (e *abortedError) Error() string {
	return anyvarerr.ErrBatchAborted.Error() + ": " + e.cause.Error()
}

func (e *abortedError) Is(target error) bool {
	return target == anyvarerr.ErrBatchAborted
}

func (e *abortedError) Unwrap() error {
	return e.cause
}
