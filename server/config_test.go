package server

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Config
// ============================================================================

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 0.001, cfg.Calculator.DefaultEpsilon)
	assert.Equal(t, 1e-10, cfg.Calculator.MinEpsilon)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gonewton.yaml")
	data := []byte(`
port: 8080
static_dir: /srv/client
allowed_origins: ["http://localhost:5173", "https://newton.example"]
log_format: text
read_timeout: 3s
calculator:
  default_epsilon: 0.0001
  min_epsilon: 1e-8
  plot_samples: 50
tracing:
  exporter: otlp
  endpoint: collector:4317
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/srv/client", cfg.StaticDir)
	assert.Len(t, cfg.AllowedOrigins, 2)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.WriteTimeout, "unset fields keep defaults")
	assert.Equal(t, 1e-8, cfg.Calculator.MinEpsilon)
	assert.Equal(t, 50, cfg.Calculator.PlotSamples)
	assert.Equal(t, "collector:4317", cfg.Tracing.Endpoint)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("GONEWTON_PORT", "9000")
	t.Setenv("GONEWTON_ALLOWED_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("GONEWTON_LOG_LEVEL", "DEBUG")
	t.Setenv("OTEL_TRACES_EXPORTER", "stdout")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "stdout", cfg.Tracing.Exporter)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("port: [1, 2"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	t.Setenv("GONEWTON_PORT", "eighty")
	_, err = LoadConfig("")
	assert.ErrorContains(t, err, "GONEWTON_PORT")
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
	}{
		{"port zero", func(c *Config) { c.Port = 0 }},
		{"port too large", func(c *Config) { c.Port = 70000 }},
		{"no origins", func(c *Config) { c.AllowedOrigins = nil }},
		{"ftp origin", func(c *Config) { c.AllowedOrigins = []string{"ftp://x"} }},
		{"log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"gin mode", func(c *Config) { c.GinMode = "prod" }},
		{"tiny body", func(c *Config) { c.MaxBodyBytes = 10 }},
		{"zero timeout", func(c *Config) { c.WriteTimeout = 0 }},
		{"epsilon floor", func(c *Config) { c.Calculator.MinEpsilon = 1e-12 }},
		{"default below floor", func(c *Config) { c.Calculator.MinEpsilon = 0.01 }},
		{"one plot sample", func(c *Config) { c.Calculator.PlotSamples = 1 }},
		{"exporter", func(c *Config) { c.Tracing.Exporter = "zipkin" }},
		{"otlp without endpoint", func(c *Config) { c.Tracing.Exporter = "otlp"; c.Tracing.Endpoint = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = -1
	_, err := New(cfg, nil, "test")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// ============================================================================
// Logging and tracing
// ============================================================================

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	logger := NewLogger(&buf, cfg)

	logger.Info("dropped")
	logger.Warn("kept", "x0", 1.5)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, 1.5, entry["x0"])

	buf.Reset()
	cfg.LogFormat = "text"
	NewLogger(&buf, cfg).Error("boom")
	assert.Contains(t, buf.String(), "msg=boom")
}

func TestInitTracing(t *testing.T) {
	ctx := context.Background()

	shutdown, err := InitTracing(ctx, TracingConfig{Exporter: "none"}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))

	_, err = InitTracing(ctx, TracingConfig{Exporter: "zipkin"}, "test")
	assert.ErrorIs(t, err, ErrUnknownExporter)

	shutdown, err = InitTracing(ctx, TracingConfig{Exporter: "stdout", ServiceName: "gonewton"}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))
}
