package asyncjob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
	"github.com/ga4gh/anyvar/internal/broker"
	"github.com/ga4gh/anyvar/internal/metrics"
)

// Process runs the ingest pipeline for one task, writing its output to
// task.OutputPath. An implementation is injected rather than imported
// directly so asyncjob stays decoupled from vcfingest's dependency
// graph; cmd/anyvar wires the real vcfingest.Pipeline in.
type Process func(ctx context.Context, task broker.Task) error

// Queue combines a broker.Broker, a broker.ResultStore, and a TTL policy
// into the submit/poll/worker contract spec.md §4.9 describes.
type Queue struct {
	b       broker.Broker
	results broker.ResultStore
	ttl     time.Duration
	logger  *zap.Logger
}

// DefaultTTL is how long a run stays fetchable, counted from Submit;
// once it has passed, Poll deletes the record and returns ErrRunUnknown.
const DefaultTTL = 24 * time.Hour

// New builds a Queue with the given TTL (DefaultTTL if zero).
func New(b broker.Broker, results broker.ResultStore, ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{b: b, results: results, ttl: ttl, logger: zap.NewNop()}
}

// SetLogger sets the logger used by RunWorker.
func (q *Queue) SetLogger(l *zap.Logger) {
	q.logger = l
}

// Submit records a new PENDING Run and enqueues its task on the broker.
// If runID is empty, a fresh one is generated; a caller-supplied runID
// that collides with an active run is rejected with ErrRunIDConflict.
func (q *Queue) Submit(ctx context.Context, runID, inputPath, outputPath string) (*Run, error) {
	if runID == "" {
		runID = uuid.NewString()
	} else if existing, err := q.getRun(ctx, runID); err == nil && !existing.ExpiredAt(time.Now()) {
		return nil, anyvarerr.ErrRunIDConflict
	}

	now := time.Now()
	run := &Run{
		RunID:        runID,
		Status:       Pending,
		InputPath:    inputPath,
		OutputPath:   outputPath,
		CreatedAt:    now,
		UpdatedAt:    now,
		TTLExpiresAt: now.Add(q.ttl),
	}
	if err := q.putRun(ctx, run); err != nil {
		return nil, err
	}

	if err := q.b.Submit(ctx, broker.Task{RunID: runID, InputPath: inputPath, OutputPath: outputPath}); err != nil {
		return nil, fmt.Errorf("enqueue run %s: %w", runID, err)
	}
	return run, nil
}

// Poll returns the current status of runID. It returns ErrRunUnknown if
// the run was never submitted, was purged, or has passed its TTL.
func (q *Queue) Poll(ctx context.Context, runID string) (*Run, error) {
	run, err := q.getRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.ExpiredAt(time.Now()) {
		_ = q.results.Delete(ctx, runID)
		return nil, anyvarerr.ErrRunUnknown
	}
	return run, nil
}

func (q *Queue) getRun(ctx context.Context, runID string) (*Run, error) {
	data, ok, err := q.results.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, anyvarerr.ErrRunUnknown
	}
	return unmarshalRun(data)
}

func (q *Queue) putRun(ctx context.Context, run *Run) error {
	data, err := marshalRun(run)
	if err != nil {
		return err
	}
	return q.results.Set(ctx, run.RunID, data)
}

// RunWorker drains the broker one task at a time (prefetch 1) and runs
// process for each, transitioning PENDING -> RUNNING -> {COMPLETED,
// FAILED}. It acks only after process has returned and the run record
// is updated to COMPLETED or FAILED — a late ack, so a crash mid-process
// leaves the task unacked for redelivery and re-execution, which is
// safe because VRS ids are deterministic. It returns when ctx is
// cancelled.
func (q *Queue) RunWorker(ctx context.Context, process Process) error {
	for {
		task, err := q.b.Consume(ctx)
		if err != nil {
			if errors.Is(err, broker.ErrNoTask) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				continue
			}
			return err
		}

		if err := q.runOne(ctx, task, process); err != nil {
			q.logger.Error("async run failed", zap.String("run_id", task.RunID), zap.Error(err))
		}
	}
}

func (q *Queue) runOne(ctx context.Context, task broker.Task, process Process) error {
	run, err := q.getRun(ctx, task.RunID)
	if err != nil {
		// Run record is gone (purged/expired) but the task survived;
		// nothing to update, ack so it isn't retried forever.
		_ = q.b.Ack(ctx, task)
		return err
	}

	run.Status = Running
	run.UpdatedAt = time.Now()
	if err := q.putRun(ctx, run); err != nil {
		return err
	}

	runErr := process(ctx, task)

	run.UpdatedAt = time.Now()
	if runErr != nil {
		run.Status = Failed
		run.ErrorMessage = runErr.Error()
		if err := q.putRun(ctx, run); err != nil {
			return err
		}
		metrics.RunsTotal.WithLabelValues(string(Failed)).Inc()
		// The pipeline itself failed (not a broker/infra problem): ack so
		// it doesn't redeliver indefinitely; the failure is terminal.
		return q.b.Ack(ctx, task)
	}

	run.Status = Completed
	if err := q.putRun(ctx, run); err != nil {
		return err
	}
	metrics.RunsTotal.WithLabelValues(string(Completed)).Inc()
	return q.b.Ack(ctx, task)
}
