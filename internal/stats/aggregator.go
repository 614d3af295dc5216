package stats

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/studiowebux/liftload/internal/types"
)

// Aggregator collects call outcomes, attempt samples and batch outcomes.
// It is safe for concurrent use.
type Aggregator struct {
	counters Counters
	logger   *zap.Logger
	metrics  *Metrics

	mu      sync.Mutex
	samples []types.Sample
	batches map[int][]types.BatchOutcome
}

// NewAggregator creates an aggregator. metrics may be nil.
func NewAggregator(logger *zap.Logger, metrics *Metrics) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		logger:  logger,
		metrics: metrics,
		samples: make([]types.Sample, 0, 1024),
		batches: make(map[int][]types.BatchOutcome),
	}
}

// RecordCall counts one logical call
func (a *Aggregator) RecordCall(outcome types.Outcome) {
	a.counters.Add(outcome.Success)

	if !outcome.Success {
		a.logger.Warn("request failed",
			zap.String("url", outcome.URL),
			zap.String("type", string(outcome.RequestType)),
			zap.Int("code", outcome.ResponseCode),
			zap.Int("attempts", outcome.Attempts),
			zap.Error(outcome.Err))
	}

	if a.metrics != nil {
		a.metrics.observeCall(outcome)
	}
}

// RecordSample appends one attempt sample
func (a *Aggregator) RecordSample(sample types.Sample) {
	a.mu.Lock()
	a.samples = append(a.samples, sample)
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.observeSample(sample)
	}
}

// RecordBatch keeps a finished batch outcome
func (a *Aggregator) RecordBatch(batch types.BatchOutcome) {
	a.mu.Lock()
	a.batches[batch.Phase] = append(a.batches[batch.Phase], batch)
	a.mu.Unlock()

	if batch.Failed {
		a.logger.Debug("batch finished with failures",
			zap.Int("phase", batch.Phase),
			zap.Int("worker", batch.WorkerID),
			zap.String("kind", string(batch.Kind)))
	}

	if a.metrics != nil {
		a.metrics.observeBatch(batch)
	}
}

// Snapshot returns the current counters
func (a *Aggregator) Snapshot() Snapshot {
	return a.counters.Snapshot()
}

// Samples returns a copy of the recorded samples
func (a *Aggregator) Samples() []types.Sample {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]types.Sample, len(a.samples))
	copy(out, a.samples)
	return out
}

// Batches returns the batch outcomes of phase ordered by start time
func (a *Aggregator) Batches(phase int) []types.BatchOutcome {
	a.mu.Lock()
	out := make([]types.BatchOutcome, len(a.batches[phase]))
	copy(out, a.batches[phase])
	a.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// Summaries returns latency statistics for every request type, in report order
func (a *Aggregator) Summaries() []Summary {
	byType := make(map[types.RequestType][]time.Duration)

	a.mu.Lock()
	for _, s := range a.samples {
		byType[s.RequestType] = append(byType[s.RequestType], s.Latency)
	}
	a.mu.Unlock()

	summaries := make([]Summary, 0, len(types.AllRequestTypes))
	for _, rt := range types.AllRequestTypes {
		summaries = append(summaries, Summarize(rt, byType[rt]))
	}
	return summaries
}
