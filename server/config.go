package server

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/njchilds90/gonewton"
	"gopkg.in/yaml.v3"
)

// Config holds everything the HTTP service needs. Values come from
// DefaultConfig, then an optional YAML file, then environment variables.
type Config struct {
	Port           int      `yaml:"port" validate:"gte=1,lte=65535"`
	StaticDir      string   `yaml:"static_dir"`
	AllowedOrigins []string `yaml:"allowed_origins" validate:"min=1,dive,origin"`
	LogLevel       string   `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat      string   `yaml:"log_format" validate:"oneof=json text"`
	GinMode        string   `yaml:"gin_mode" validate:"oneof=debug release test"`
	MetricsEnabled bool     `yaml:"metrics_enabled"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes" validate:"gte=1024"`
	// RateLimit is the sustained request rate per second across all clients;
	// 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
	RateBurst int     `yaml:"rate_burst" validate:"gte=0"`

	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" validate:"gt=0"`
	ReadTimeout       time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`

	Calculator CalculatorConfig `yaml:"calculator"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

// CalculatorConfig tunes the root-finding core.
type CalculatorConfig struct {
	DefaultEpsilon    float64 `yaml:"default_epsilon" validate:"gt=0"`
	MinEpsilon        float64 `yaml:"min_epsilon" validate:"gte=1e-10"`
	PlotSamples       int     `yaml:"plot_samples" validate:"gte=2,lte=10000"`
	MaxFunctionLength int     `yaml:"max_function_length" validate:"gte=0"`
}

// TracingConfig selects the OpenTelemetry trace exporter.
type TracingConfig struct {
	Exporter    string `yaml:"exporter" validate:"oneof=none stdout otlp"`
	Endpoint    string `yaml:"endpoint" validate:"required_if=Exporter otlp"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name" validate:"required"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Port:              5000,
		AllowedOrigins:    []string{"*"},
		LogLevel:          "info",
		LogFormat:         "json",
		GinMode:           "release",
		MetricsEnabled:    true,
		MaxBodyBytes:      1 << 20,
		RateLimit:         50,
		RateBurst:         100,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		Calculator: CalculatorConfig{
			DefaultEpsilon:    gonewton.DefaultEpsilon,
			MinEpsilon:        gonewton.MinEpsilon,
			PlotSamples:       gonewton.DefaultPlotSamples,
			MaxFunctionLength: gonewton.DefaultMaxFunctionLength,
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			Endpoint:    "localhost:4317",
			Insecure:    true,
			ServiceName: "gonewton",
		},
	}
}

// LoadConfig reads path (skipped when empty) over DefaultConfig, applies
// environment overrides and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from GONEWTON_* and the standard OTEL_* variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("GONEWTON_PORT"); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("GONEWTON_PORT: %w", err)
		}
		c.Port = port
	}
	if v, ok := os.LookupEnv("GONEWTON_STATIC_DIR"); ok {
		c.StaticDir = v
	}
	if v, ok := os.LookupEnv("GONEWTON_ALLOWED_ORIGINS"); ok {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.AllowedOrigins = origins
	}
	if v, ok := os.LookupEnv("GONEWTON_LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("GONEWTON_GIN_MODE"); ok {
		c.GinMode = v
	}
	if v, ok := os.LookupEnv("OTEL_TRACES_EXPORTER"); ok {
		c.Tracing.Exporter = v
	}
	if v, ok := os.LookupEnv("OTEL_EXPORTER_OTLP_ENDPOINT"); ok {
		c.Tracing.Endpoint = v
	}
	return nil
}

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("origin", validateOrigin)
}

// validateOrigin accepts "*" or an http(s) origin; the CORS middleware
// rejects anything else at startup.
func validateOrigin(fl validator.FieldLevel) bool {
	o := fl.Field().String()
	return o == "*" || strings.HasPrefix(o, "http://") || strings.HasPrefix(o, "https://")
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Calculator.DefaultEpsilon < c.Calculator.MinEpsilon {
		return fmt.Errorf("%w: calculator.default_epsilon %g is below calculator.min_epsilon %g",
			ErrInvalidConfig, c.Calculator.DefaultEpsilon, c.Calculator.MinEpsilon)
	}
	return nil
}

// NewCalculator builds the core calculator from c.
func (c CalculatorConfig) NewCalculator() *gonewton.Calculator {
	return gonewton.NewCalculator(
		gonewton.WithMinEpsilon(c.MinEpsilon),
		gonewton.WithDefaultEpsilon(c.DefaultEpsilon),
		gonewton.WithPlotSamples(c.PlotSamples),
		gonewton.WithMaxFunctionLength(c.MaxFunctionLength),
	)
}
