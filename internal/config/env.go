package config

import (
	"os"
	"strconv"
)

// LoadFromEnv overlays LIFTLOAD_* environment variables onto cfg.
// Unparseable numbers are ignored.
func LoadFromEnv(cfg *Config) {
	w := &cfg.Workload

	if v := os.Getenv("LIFTLOAD_SERVER_ADDR"); v != "" {
		w.ServerAddr = v
	}
	setInt("LIFTLOAD_SERVER_PORT", &w.ServerPort)
	if v := os.Getenv("LIFTLOAD_API_PATH"); v != "" {
		w.APIPath = v
	}
	setInt("LIFTLOAD_MAX_THREADS", &w.MaxThreads)
	setInt("LIFTLOAD_SKIER_COUNT", &w.SkierCount)
	setInt("LIFTLOAD_LIFT_COUNT", &w.LiftCount)
	setInt("LIFTLOAD_SKI_DAY", &w.SkiDay)
	if v := os.Getenv("LIFTLOAD_RESORT"); v != "" {
		w.ResortName = v
	}
	if v := os.Getenv("LIFTLOAD_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			w.RequestsPerSecond = f
		}
	}

	if v := os.Getenv("LIFTLOAD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LIFTLOAD_METRICS_ADDR"); v != "" {
		cfg.Output.MetricsAddr = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
