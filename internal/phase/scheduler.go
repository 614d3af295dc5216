package phase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/studiowebux/liftload/internal/config"
	"github.com/studiowebux/liftload/internal/workload"
)

// SchedulerOptions configures a Scheduler
type SchedulerOptions struct {
	Workload    config.Workload
	Builder     *workload.Builder
	Executor    Executor
	Recorder    BatchRecorder
	Logger      *zap.Logger
	OnGateFired func(phase int)
}

// Scheduler starts the three phases together and gates phase 2 on phase 1
// and phase 3 on phase 2
type Scheduler struct {
	opts   SchedulerOptions
	logger *zap.Logger
}

// PhaseResult describes how one phase ran
type PhaseResult struct {
	Plan         Plan
	GateTimedOut bool // waited for the previous phase's gate and gave up
	StartTime    time.Time
	EndTime      time.Time
}

// Result describes a full run
type Result struct {
	StartTime time.Time
	EndTime   time.Time
	Phases    []PhaseResult
}

// Elapsed returns the wall time of the run
func (r *Result) Elapsed() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Throughput returns total calls per second of wall time
func (r *Result) Throughput(total int64) float64 {
	secs := r.Elapsed().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(total) / secs
}

// NewScheduler creates a scheduler
func NewScheduler(opts SchedulerOptions) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Builder == nil {
		opts.Builder = workload.NewBuilder(opts.Workload, nil)
	}
	return &Scheduler{opts: opts, logger: opts.Logger}
}

// Run executes all phases and returns once every phase has returned.
// Partition errors are reported before any request is sent.
func (s *Scheduler) Run(ctx context.Context) (*Result, error) {
	w := s.opts.Workload
	plans := Plans(w)

	partitions := make([][][]int, len(plans))
	for i, plan := range plans {
		p, err := workload.Partition(w.SkierCount, plan.Workers)
		if err != nil {
			return nil, fmt.Errorf("phase %d: %w", plan.Number, err)
		}
		partitions[i] = p
	}

	// gates[i] is fired by phase i+1 and awaited by phase i+2
	gates := make([]*Gate, len(plans)-1)
	for i := range gates {
		gates[i] = NewGate()
	}

	result := &Result{
		StartTime: time.Now(),
		Phases:    make([]PhaseResult, len(plans)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, plan := range plans {
		var fires, awaits *Gate
		if i < len(gates) {
			fires = gates[i]
		}
		if i > 0 {
			awaits = gates[i-1]
		}

		runner := NewRunner(RunnerOptions{
			Plan:         plan,
			LiftCount:    w.LiftCount,
			Builder:      s.opts.Builder,
			Executor:     s.opts.Executor,
			Recorder:     s.opts.Recorder,
			Gate:         fires,
			PollInterval: w.GetPollInterval(),
			Logger:       s.logger,
			OnGateFired:  s.opts.OnGateFired,
		})

		g.Go(func() error {
			pr := PhaseResult{Plan: plan}

			if awaits != nil {
				if !awaits.Wait(gctx, w.GetGateTimeout()) {
					if gctx.Err() != nil {
						if fires != nil {
							fires.Fire()
						}
						result.Phases[i] = pr
						return gctx.Err()
					}
					pr.GateTimedOut = true
					s.logger.Warn("gate wait timed out, starting anyway",
						zap.Int("phase", plan.Number),
						zap.Duration("timeout", w.GetGateTimeout()))
				}
			}

			pr.StartTime = time.Now()
			err := runner.Run(gctx, partitions[i])
			pr.EndTime = time.Now()
			result.Phases[i] = pr
			return err
		})
	}

	err := g.Wait()
	result.EndTime = time.Now()
	return result, err
}
