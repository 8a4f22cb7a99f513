package config

import (
	"fmt"
	"time"

	"github.com/zoernert/rhajaina-dal/discovery"
	"github.com/zoernert/rhajaina-dal/pool"
	"github.com/zoernert/rhajaina-dal/resilience"
	"github.com/zoernert/rhajaina-dal/store/postgres"
	"github.com/zoernert/rhajaina-dal/store/redisvec"
	"github.com/zoernert/rhajaina-dal/telemetry"
)

// Duration wraps time.Duration so YAML values can be written as duration
// strings such as "30s" or "100ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("config: parse duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := unmarshal(&n); err != nil {
		return err
	}
	*d = Duration(time.Duration(n) * time.Second)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full data-access layer configuration.
type Config struct {
	Logging   LoggingConfig    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
	Retry     RetryConfig      `yaml:"retry"`
	Breaker   BreakerConfig    `yaml:"breaker"`
	Pool      PoolConfig       `yaml:"pool"`
	Postgres  PostgresConfig   `yaml:"postgres"`
	Redis     RedisConfig      `yaml:"redis"`
	Discovery DiscoveryConfig  `yaml:"discovery"`
}

// LoggingConfig configures the slog backend.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `yaml:"level"`

	// Format is "json" or "text". Default: json
	Format string `yaml:"format"`
}

// RetryConfig holds the retry and backoff tunables.
type RetryConfig struct {
	MaxAttempts  int      `yaml:"max_attempts"`
	InitialDelay Duration `yaml:"initial_delay"`
	MaxDelay     Duration `yaml:"max_delay"`
	Multiplier   float64  `yaml:"multiplier"`
	Jitter       bool     `yaml:"jitter"`
}

// Resilience converts the section into a resilience.RetryConfig.
func (c RetryConfig) Resilience() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts: c.MaxAttempts,
		Backoff: resilience.BackoffConfig{
			InitialDelay: c.InitialDelay.Std(),
			MaxDelay:     c.MaxDelay.Std(),
			Multiplier:   c.Multiplier,
			Jitter:       c.Jitter,
		},
	}
}

// BreakerConfig holds the circuit breaker tunables.
type BreakerConfig struct {
	MaxFailures       int      `yaml:"max_failures"`
	ResetTimeout      Duration `yaml:"reset_timeout"`
	HalfOpenSuccesses int      `yaml:"half_open_successes"`
}

// Resilience converts the section into a resilience.CircuitBreakerConfig.
func (c BreakerConfig) Resilience() resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		MaxFailures:       c.MaxFailures,
		ResetTimeout:      c.ResetTimeout.Std(),
		HalfOpenSuccesses: c.HalfOpenSuccesses,
	}
}

// PoolConfig holds the connection pool tunables.
type PoolConfig struct {
	HealthCheckInterval Duration `yaml:"health_check_interval"`
	ConnectTimeout      Duration `yaml:"connect_timeout"`
	MaxConcurrent       int      `yaml:"max_concurrent"`
}

// Pool converts the section, plus the retry and breaker sections, into a
// pool.Config.
func (c Config) PoolConfig() pool.Config {
	return pool.Config{
		HealthCheckInterval: c.Pool.HealthCheckInterval.Std(),
		ConnectTimeout:      c.Pool.ConnectTimeout.Std(),
		MaxConcurrent:       c.Pool.MaxConcurrent,
		Reconnect:           c.Retry.Resilience(),
		Breaker:             c.Breaker.Resilience(),
	}
}

// PostgresConfig holds the document store connection settings.
type PostgresConfig struct {
	URL            string   `yaml:"url"`
	MaxConns       int      `yaml:"max_conns"`
	MinConns       int      `yaml:"min_conns"`
	ConnectTimeout Duration `yaml:"connect_timeout"`
}

func (c PostgresConfig) Store() postgres.Config {
	return postgres.Config{
		URL:            c.URL,
		MaxConns:       c.MaxConns,
		MinConns:       c.MinConns,
		ConnectTimeout: c.ConnectTimeout.Std(),
	}
}

// RedisConfig holds the vector store connection settings.
type RedisConfig struct {
	URL            string   `yaml:"url"`
	Password       string   `yaml:"password"`
	Dimensions     int      `yaml:"dimensions"`
	ConnectTimeout Duration `yaml:"connect_timeout"`
}

func (c RedisConfig) Store() redisvec.Config {
	return redisvec.Config{
		URL:            c.URL,
		Password:       c.Password,
		Dimensions:     c.Dimensions,
		ConnectTimeout: c.ConnectTimeout.Std(),
	}
}

// DiscoveryConfig holds the service registry tunables.
type DiscoveryConfig struct {
	ServiceTimeout Duration `yaml:"service_timeout"`
	SweepInterval  Duration `yaml:"sweep_interval"`
	CacheTTL       Duration `yaml:"cache_ttl"`
}

func (c DiscoveryConfig) Registry() discovery.RegistryConfig {
	return discovery.RegistryConfig{
		ServiceTimeout: c.ServiceTimeout.Std(),
		SweepInterval:  c.SweepInterval.Std(),
	}
}

func (c DiscoveryConfig) Client() discovery.ClientConfig {
	return discovery.ClientConfig{CacheTTL: c.CacheTTL.Std()}
}

// Validate rejects configurations that cannot work at all. Zero values are
// fine everywhere defaults exist; only contradictions are errors.
func (c Config) Validate() error {
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("config: retry.max_attempts must not be negative")
	}
	if c.Retry.Multiplier != 0 && c.Retry.Multiplier < 1 {
		return fmt.Errorf("config: retry.multiplier must be >= 1")
	}
	if c.Redis.Dimensions < 0 {
		return fmt.Errorf("config: redis.dimensions must not be negative")
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("config: unknown logging.format %q", c.Logging.Format)
	}
	switch c.Telemetry.Exporter {
	case "", telemetry.ExporterPrometheus, telemetry.ExporterStdout, telemetry.ExporterNone:
	default:
		return fmt.Errorf("config: unknown telemetry.exporter %q", c.Telemetry.Exporter)
	}
	return nil
}
