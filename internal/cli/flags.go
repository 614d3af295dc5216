package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/studiowebux/liftload/internal/config"
	"github.com/studiowebux/liftload/internal/mock"
)

// RegisterRunFlags adds the run flags to fs. Defaults are shown for help only;
// a flag overrides the config file and environment only when set.
func RegisterRunFlags(fs *pflag.FlagSet) {
	d := config.Default()

	fs.StringP("config", "c", "", "Config file (.yaml, .yml, .json, .jsonc)")

	fs.String("serverAddr", d.Workload.ServerAddr, "Target scheme and host")
	fs.Int("serverPort", d.Workload.ServerPort, "Target port")
	fs.String("apiPath", d.Workload.APIPath, "Lift-ride POST path")
	fs.Int("maxThreadCount", d.Workload.MaxThreads, "Worker count of the peak phase")
	fs.Int("skierCount", d.Workload.SkierCount, "Number of skiers")
	fs.Int("skiLiftCount", d.Workload.LiftCount, "Number of lifts")
	fs.Int("skiDay", d.Workload.SkiDay, "Ski day")
	fs.String("resortName", d.Workload.ResortName, "Resort name")

	fs.Int("write-batch", d.Workload.WriteBatch, "Writes per worker")
	fs.Int("read-batch", d.Workload.ReadBatch, "Reads per worker in phases 1 and 2")
	fs.Int("final-read-batch", d.Workload.FinalReadBatch, "Reads per worker in phase 3")
	fs.Int("max-attempts", d.Workload.MaxAttempts, "Attempts per logical call")
	fs.Int("retry-base", d.Workload.RetryBaseMs, "Backoff base in milliseconds")
	fs.Float64("rps", d.Workload.RequestsPerSecond, "Cap on attempts per second (0 = unlimited)")
	fs.Int("gate-timeout", d.Workload.GateTimeoutMs, "Max wait on the previous phase in milliseconds (0 = unbounded)")
	fs.Int("request-timeout", d.Workload.RequestTimeoutSec, "Per-attempt timeout in seconds (0 = none)")

	fs.StringP("output", "o", d.Output.CSVPath, "CSV file for latency samples (empty to skip)")
	fs.String("metrics-addr", d.Output.MetricsAddr, "Serve Prometheus metrics on this address")
	fs.Bool("no-history", false, "Do not save the run to history")

	fs.String("log-level", d.Logging.Level, "Log level (debug, info, warn, error)")
	fs.String("log-format", d.Logging.Format, "Log format (console, json)")
}

// LoadConfig builds the run configuration: defaults, then the config file,
// then LIFTLOAD_* environment variables, then changed flags in fs
func LoadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	cfg := config.Default()

	var explicit string
	if fs != nil {
		explicit, _ = fs.GetString("config")
	}
	if path := config.ResolveConfigFile(explicit); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	config.LoadFromEnv(cfg)

	if fs != nil {
		if err := applyRunFlags(fs, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyRunFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	w := &cfg.Workload

	stringFlags := map[string]*string{
		"serverAddr":   &w.ServerAddr,
		"apiPath":      &w.APIPath,
		"resortName":   &w.ResortName,
		"output":       &cfg.Output.CSVPath,
		"metrics-addr": &cfg.Output.MetricsAddr,
		"log-level":    &cfg.Logging.Level,
		"log-format":   &cfg.Logging.Format,
	}
	intFlags := map[string]*int{
		"serverPort":       &w.ServerPort,
		"maxThreadCount":   &w.MaxThreads,
		"skierCount":       &w.SkierCount,
		"skiLiftCount":     &w.LiftCount,
		"skiDay":           &w.SkiDay,
		"write-batch":      &w.WriteBatch,
		"read-batch":       &w.ReadBatch,
		"final-read-batch": &w.FinalReadBatch,
		"max-attempts":     &w.MaxAttempts,
		"retry-base":       &w.RetryBaseMs,
		"gate-timeout":     &w.GateTimeoutMs,
		"request-timeout":  &w.RequestTimeoutSec,
	}

	for name, dst := range stringFlags {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
		*dst = v
	}
	for name, dst := range intFlags {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetInt(name)
		if err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
		*dst = v
	}

	if fs.Changed("rps") {
		v, err := fs.GetFloat64("rps")
		if err != nil {
			return fmt.Errorf("flag --rps: %w", err)
		}
		w.RequestsPerSecond = v
	}
	if fs.Changed("no-history") {
		v, err := fs.GetBool("no-history")
		if err != nil {
			return fmt.Errorf("flag --no-history: %w", err)
		}
		cfg.Output.History = !v
	}

	return nil
}

// RegisterMockFlags adds the mock server flags to fs
func RegisterMockFlags(fs *pflag.FlagSet) {
	d := mock.DefaultConfig()

	fs.StringP("config", "c", "", "Mock config file (.yaml, .yml, .json)")
	fs.String("host", d.Host, "Listen host")
	fs.IntP("port", "p", d.Port, "Listen port")
	fs.Float64("failure-rate", d.FailureRate, "Fraction of requests answered with 503")
	fs.Int("delay", d.Delay, "Response delay in milliseconds")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
}

// LoadMockConfig builds the mock configuration from an optional file and the
// changed flags in fs
func LoadMockConfig(fs *pflag.FlagSet) (*mock.Config, error) {
	cfg := mock.DefaultConfig()

	if path, _ := fs.GetString("config"); path != "" {
		loaded, err := mock.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if fs.Changed("host") {
		cfg.Host, _ = fs.GetString("host")
	}
	if fs.Changed("port") {
		cfg.Port, _ = fs.GetInt("port")
	}
	if fs.Changed("failure-rate") {
		cfg.FailureRate, _ = fs.GetFloat64("failure-rate")
	}
	if fs.Changed("delay") {
		cfg.Delay, _ = fs.GetInt("delay")
	}

	if cfg.FailureRate < 0 || cfg.FailureRate > 1 {
		return nil, fmt.Errorf("%w: failure rate must be between 0 and 1", config.ErrInvalidConfiguration)
	}
	if cfg.Delay < 0 {
		return nil, fmt.Errorf("%w: delay cannot be negative", config.ErrInvalidConfiguration)
	}
	return cfg, nil
}
