package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 7, cfg.Workload.MaxAttempts)
	assert.Equal(t, "http://localhost:8080", cfg.Workload.BaseURL())
}

func TestWorkload_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(w *Workload)
	}{
		{"zero threads", func(w *Workload) { w.MaxThreads = 0 }},
		{"fewer skiers than threads", func(w *Workload) { w.SkierCount = 10; w.MaxThreads = 20 }},
		{"no lifts", func(w *Workload) { w.LiftCount = 0 }},
		{"bad port", func(w *Workload) { w.ServerPort = 70000 }},
		{"no resort", func(w *Workload) { w.ResortName = "" }},
		{"zero attempts", func(w *Workload) { w.MaxAttempts = 0 }},
		{"negative rps", func(w *Workload) { w.RequestsPerSecond = -1 }},
		{"negative batch", func(w *Workload) { w.ReadBatch = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg.Workload)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestConfig_ValidateLogFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfiguration)
}

func TestBaseURL_TrimsTrailingSlash(t *testing.T) {
	w := Default().Workload
	w.ServerAddr = "http://example.com/"
	w.ServerPort = 9090
	assert.Equal(t, "http://example.com:9090", w.BaseURL())
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liftload.yaml")
	content := `
workload:
  serverAddr: http://10.0.0.5
  maxThreads: 32
  resortName: Mission Ridge
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), FilePermissions))

	cfg := Default()
	require.NoError(t, LoadFile(path, cfg))

	assert.Equal(t, "http://10.0.0.5", cfg.Workload.ServerAddr)
	assert.Equal(t, 32, cfg.Workload.MaxThreads)
	assert.Equal(t, "Mission Ridge", cfg.Workload.ResortName)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched fields keep defaults
	assert.Equal(t, 50000, cfg.Workload.SkierCount)
	assert.Equal(t, 8080, cfg.Workload.ServerPort)
}

func TestLoadFile_JSONC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liftload.jsonc")
	content := `{
  // comments are fine
  "workload": {
    "skierCount": 1000,
    "liftCount": 10,
  },
}`
	require.NoError(t, os.WriteFile(path, []byte(content), FilePermissions))

	cfg := Default()
	require.NoError(t, LoadFile(path, cfg))
	assert.Equal(t, 1000, cfg.Workload.SkierCount)
	assert.Equal(t, 10, cfg.Workload.LiftCount)
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liftload.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), FilePermissions))
	assert.Error(t, LoadFile(path, Default()))
}

func TestSaveFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Workload.MaxThreads = 64
	require.NoError(t, SaveFile(cfg, path))

	loaded := &Config{}
	require.NoError(t, LoadFile(path, loaded))
	assert.Equal(t, cfg.Workload, loaded.Workload)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LIFTLOAD_SERVER_ADDR", "http://target")
	t.Setenv("LIFTLOAD_MAX_THREADS", "12")
	t.Setenv("LIFTLOAD_SKIER_COUNT", "not-a-number")
	t.Setenv("LIFTLOAD_RPS", "250.5")
	t.Setenv("LIFTLOAD_LOG_LEVEL", "warn")

	cfg := Default()
	LoadFromEnv(cfg)

	assert.Equal(t, "http://target", cfg.Workload.ServerAddr)
	assert.Equal(t, 12, cfg.Workload.MaxThreads)
	assert.Equal(t, 50000, cfg.Workload.SkierCount)
	assert.Equal(t, 250.5, cfg.Workload.RequestsPerSecond)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestInitializeAt(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home", ".liftload")
	require.NoError(t, InitializeAt(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, "liftload.db"), DatabasePath)
}

func TestResolveConfigFile_Explicit(t *testing.T) {
	assert.Equal(t, "/tmp/custom.yaml", ResolveConfigFile("/tmp/custom.yaml"))
}
