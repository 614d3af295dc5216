package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/studiowebux/liftload/internal/config"
	"github.com/studiowebux/liftload/internal/executor"
	"github.com/studiowebux/liftload/internal/history"
	"github.com/studiowebux/liftload/internal/phase"
	"github.com/studiowebux/liftload/internal/report"
	"github.com/studiowebux/liftload/internal/stats"
	"github.com/studiowebux/liftload/internal/types"
)

// RunOptions contains options for a load run
type RunOptions struct {
	Stdout  io.Writer // report destination, os.Stdout when nil
	DataDir string    // overrides ~/.liftload for the history database
}

// RunResult is what a finished run produced
type RunResult struct {
	RunID     string
	Snapshot  stats.Snapshot
	Result    *phase.Result
	Summaries []stats.Summary
	Samples   []types.Sample
}

// Run executes a full three-phase load run against the configured target,
// prints the report and writes the CSV and history outputs
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts RunOptions) (*RunResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	w := cfg.Workload

	totalWorkers := 0
	for _, plan := range phase.Plans(w) {
		totalWorkers += plan.Workers
	}
	client := executor.NewHTTPClient(totalWorkers, w.GetRequestTimeout())
	defer client.CloseIdleConnections()

	metrics := stats.NewMetrics()
	aggregator := stats.NewAggregator(logger, metrics)

	if cfg.Output.MetricsAddr != "" {
		stop, err := serveMetrics(cfg.Output.MetricsAddr, metrics, logger)
		if err != nil {
			return nil, err
		}
		defer stop()
	}

	exec := executor.New(client, aggregator, executor.Options{
		MaxAttempts:       w.MaxAttempts,
		RetryBase:         w.GetRetryBase(),
		RequestsPerSecond: w.RequestsPerSecond,
		Logger:            logger,
	})

	scheduler := phase.NewScheduler(phase.SchedulerOptions{
		Workload:    w,
		Executor:    exec,
		Recorder:    aggregator,
		Logger:      logger,
		OnGateFired: metrics.GateFired,
	})

	runID := history.NewRunID()
	logger.Info("starting load run",
		zap.String("run_id", runID),
		zap.String("target", w.BaseURL()+w.APIPath),
		zap.Int("max_threads", w.MaxThreads),
		zap.Int("skiers", w.SkierCount),
		zap.Int("lifts", w.LiftCount),
		zap.Int("client_pool", executor.PoolSize(totalWorkers)),
	)

	result, runErr := scheduler.Run(ctx)
	if result == nil {
		return nil, runErr
	}

	res := &RunResult{
		RunID:     runID,
		Snapshot:  aggregator.Snapshot(),
		Result:    result,
		Summaries: aggregator.Summaries(),
		Samples:   aggregator.Samples(),
	}

	if runErr != nil {
		logger.Warn("load run ended early", zap.Error(runErr))
	}

	summary := report.Summary{
		RunID:      runID,
		Snapshot:   res.Snapshot,
		Elapsed:    result.Elapsed(),
		Throughput: result.Throughput(res.Snapshot.Total),
		Latencies:  res.Summaries,
		Phases:     result.Phases,
	}
	for _, p := range result.Phases {
		summary.Batches = append(summary.Batches, aggregator.Batches(p.Plan.Number)...)
	}

	var outputErr error
	if cfg.Output.CSVPath != "" {
		if err := stats.WriteCSVFile(cfg.Output.CSVPath, res.Samples); err != nil {
			logger.Error("failed to write samples", zap.String("path", cfg.Output.CSVPath), zap.Error(err))
			outputErr = err
		} else {
			summary.CSVPath = cfg.Output.CSVPath
		}
	}

	if err := report.Print(out, summary); err != nil {
		return res, fmt.Errorf("failed to print report: %w", err)
	}

	if cfg.Output.History {
		if err := saveHistory(opts.DataDir, buildRun(runID, cfg, res, runErr)); err != nil {
			// History is best effort
			logger.Warn("failed to save run history", zap.Error(err))
		}
	}

	if runErr != nil {
		return res, runErr
	}
	return res, outputErr
}

// serveMetrics starts the Prometheus endpoint and returns a function stopping it
func serveMetrics(addr string, metrics *stats.Metrics, logger *zap.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on metrics address %s: %w", addr, err)
	}

	r := chi.NewRouter()
	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("address", "http://"+ln.Addr().String()+"/metrics"))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// buildRun maps a finished run onto its history record
func buildRun(runID string, cfg *config.Config, res *RunResult, runErr error) *history.Run {
	w := cfg.Workload
	status := history.StatusCompleted
	var errMsg string
	switch {
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		status = history.StatusCancelled
		errMsg = runErr.Error()
	case runErr != nil:
		status = history.StatusFailed
		errMsg = runErr.Error()
	}

	run := &history.Run{
		ID:                runID,
		StartedAt:         res.Result.StartTime,
		CompletedAt:       res.Result.EndTime,
		Status:            status,
		Error:             errMsg,
		Target:            w.BaseURL() + w.APIPath,
		ResortName:        w.ResortName,
		SkiDay:            w.SkiDay,
		MaxThreads:        w.MaxThreads,
		SkierCount:        w.SkierCount,
		LiftCount:         w.LiftCount,
		RequestsPerSecond: w.RequestsPerSecond,
		Total:             res.Snapshot.Total,
		Successful:        res.Snapshot.Successful,
		Failed:            res.Snapshot.Failed,
		WallTimeMs:        res.Result.Elapsed().Milliseconds(),
		Throughput:        res.Result.Throughput(res.Snapshot.Total),
	}

	for _, s := range res.Summaries {
		run.Summaries = append(run.Summaries, history.Summary{
			RequestType: string(s.RequestType),
			Count:       s.Count,
			MeanMs:      report.Milliseconds(s.Mean),
			MedianMs:    report.Milliseconds(s.Median),
			P99Ms:       report.Milliseconds(s.P99),
			MaxMs:       report.Milliseconds(s.Max),
		})
	}
	for _, p := range res.Result.Phases {
		run.Phases = append(run.Phases, history.Phase{
			Number:       p.Plan.Number,
			Workers:      p.Plan.Workers,
			GateTimedOut: p.GateTimedOut,
			StartedAt:    p.StartTime,
			CompletedAt:  p.EndTime,
		})
	}

	return run
}

func saveHistory(dataDir string, run *history.Run) error {
	mgr, err := openHistory(dataDir)
	if err != nil {
		return err
	}
	defer mgr.Close()

	return mgr.SaveRun(run)
}
