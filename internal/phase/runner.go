package phase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/studiowebux/liftload/internal/config"
	"github.com/studiowebux/liftload/internal/types"
	"github.com/studiowebux/liftload/internal/workload"
)

// DefaultPollInterval is how often a phase checks whether to fire its gate
const DefaultPollInterval = 5 * time.Millisecond

// Executor runs one logical call
type Executor interface {
	Execute(ctx context.Context, req workload.Request) types.Outcome
}

// BatchRecorder receives finished batch outcomes
type BatchRecorder interface {
	RecordBatch(batch types.BatchOutcome)
}

// RunnerOptions configures a Runner
type RunnerOptions struct {
	Plan         Plan
	LiftCount    int
	Builder      *workload.Builder
	Executor     Executor
	Recorder     BatchRecorder
	Gate         *Gate // fired by this phase; nil when nothing waits on it
	PollInterval time.Duration
	Logger       *zap.Logger
	OnGateFired  func(phase int)
}

// Runner executes one phase on Plan.Workers goroutines. Each worker runs its
// write batch and then its read batch, independently of the others.
type Runner struct {
	opts      RunnerOptions
	logger    *zap.Logger
	completed []atomic.Int64
}

// NewRunner creates a runner for one phase
func NewRunner(opts RunnerOptions) *Runner {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Runner{
		opts:      opts,
		logger:    opts.Logger.With(zap.Int("phase", opts.Plan.Number)),
		completed: make([]atomic.Int64, opts.Plan.Workers),
	}
}

// Completed returns the number of logical calls worker has finished
func (r *Runner) Completed(worker int) int64 {
	return r.completed[worker].Load()
}

// Run builds the batches for partition and executes them. partition must
// hold one skier slice per worker. The gate is always fired before Run
// returns.
func (r *Runner) Run(ctx context.Context, partition [][]int) error {
	defer r.fireGate("phase finished")

	plan := r.opts.Plan
	if len(partition) != plan.Workers {
		return fmt.Errorf("%w: phase %d has %d workers but %d partitions",
			config.ErrInvalidConfiguration, plan.Number, plan.Workers, len(partition))
	}

	writes, reads, err := r.buildBatches(partition)
	if err != nil {
		return err
	}

	r.logger.Info("phase starting",
		zap.Int("workers", plan.Workers),
		zap.Int("writeSize", plan.WriteSize),
		zap.Int("readSize", plan.ReadSize))
	start := time.Now()

	pollCtx, stopPoll := context.WithCancel(ctx)
	var pollDone sync.WaitGroup
	if r.opts.Gate != nil {
		pollDone.Add(1)
		go func() {
			defer pollDone.Done()
			r.poll(pollCtx)
		}()
	}

	r.runWorkers(ctx, writes, reads)

	stopPoll()
	pollDone.Wait()

	r.logger.Info("phase finished", zap.Duration("elapsed", time.Since(start)))
	return ctx.Err()
}

// buildBatches creates one write and one read batch per worker. Pools are
// owned by this goroutine, so no locking is needed.
func (r *Runner) buildBatches(partition [][]int) ([]workload.Batch, []workload.Batch, error) {
	plan := r.opts.Plan

	times, err := workload.TimePool(plan.Number)
	if err != nil {
		return nil, nil, err
	}
	lifts := workload.LiftPool(r.opts.LiftCount)

	writes := make([]workload.Batch, 0, plan.Workers)
	reads := make([]workload.Batch, 0, plan.Workers)
	for id, skierIDs := range partition {
		skiers := workload.NewPool(skierIDs)

		write, err := r.opts.Builder.WriteBatch(plan.Number, id, plan.WriteSize, skiers, times, lifts)
		if err != nil {
			return nil, nil, err
		}
		read, err := r.opts.Builder.ReadBatch(plan.Number, id, plan.ReadSize, skiers)
		if err != nil {
			return nil, nil, err
		}

		writes = append(writes, write)
		reads = append(reads, read)
	}

	return writes, reads, nil
}

// runWorkers starts one goroutine per worker and waits for all of them. A
// worker moves on to its read batch as soon as its own writes are done.
func (r *Runner) runWorkers(ctx context.Context, writes, reads []workload.Batch) {
	var wg sync.WaitGroup
	for i := range writes {
		wg.Add(1)
		go func(write, read workload.Batch) {
			defer wg.Done()
			r.runBatch(ctx, write)
			r.runBatch(ctx, read)
		}(writes[i], reads[i])
	}
	wg.Wait()
}

// runBatch issues the batch's requests serially
func (r *Runner) runBatch(ctx context.Context, batch workload.Batch) {
	outcome := types.BatchOutcome{
		Phase:     batch.Phase,
		WorkerID:  batch.WorkerID,
		Kind:      batch.Kind,
		StartTime: time.Now(),
	}

	for _, req := range batch.Requests {
		if ctx.Err() != nil {
			break
		}
		result := r.opts.Executor.Execute(ctx, req)
		outcome.Requests++
		if !result.Success {
			outcome.Failed = true
		}
		r.completed[batch.WorkerID].Add(1)
	}

	outcome.EndTime = time.Now()
	if r.opts.Recorder != nil {
		r.opts.Recorder.RecordBatch(outcome)
	}
}

// poll fires the gate once enough workers are early
func (r *Runner) poll(ctx context.Context) {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.opts.Gate.Done():
			return
		case <-ticker.C:
			if r.thresholdReached() {
				r.fireGate("early workers reached threshold")
				return
			}
		}
	}
}

// thresholdReached reports whether at least 10% of workers (and at least
// one) have completed more requests than their write batch holds
func (r *Runner) thresholdReached() bool {
	early := 0
	limit := int64(r.opts.Plan.WriteSize)
	for i := range r.completed {
		if r.completed[i].Load() > limit {
			early++
		}
	}
	return early >= 1 && early*10 >= r.opts.Plan.Workers
}

func (r *Runner) fireGate(reason string) {
	if r.opts.Gate == nil {
		return
	}
	if r.opts.Gate.Fire() {
		r.logger.Info("gate fired", zap.String("reason", reason))
		if r.opts.OnGateFired != nil {
			r.opts.OnGateFired(r.opts.Plan.Number)
		}
	}
}
