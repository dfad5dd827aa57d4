// Package config loads finder settings from defaults, an optional YAML file,
// EMAILFINDER_* environment variables and bound command-line flags.
package config

import (
	"time"

	"github.com/shpitdev/email-finder-pipeline/internal/logging"
	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/batch"
	"github.com/shpitdev/email-finder-pipeline/pkg/resolver"
)

// EnvPrefix prefixes every environment override, e.g. EMAILFINDER_BATCH_SIZE.
const EnvPrefix = "EMAILFINDER"

// Config represents the complete finder configuration.
type Config struct {
	Resolver  ResolverConfig  `yaml:"resolver" mapstructure:"resolver"`
	Validator ValidatorConfig `yaml:"validator" mapstructure:"validator"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
}

// ResolverConfig describes the email-resolution webhook.
type ResolverConfig struct {
	Endpoint  string        `yaml:"endpoint" mapstructure:"endpoint"`
	Source    string        `yaml:"source" mapstructure:"source"`
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ValidatorConfig describes the email-validation webhook. Only the validate
// command requires it.
type ValidatorConfig struct {
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
}

// BatchConfig controls scheduling.
type BatchConfig struct {
	Size         int           `yaml:"size" mapstructure:"size"`
	Pacing       time.Duration `yaml:"pacing" mapstructure:"pacing"`
	RateLimitRPS float64       `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
	Pretty bool   `yaml:"pretty" mapstructure:"pretty"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DefaultConfig returns a configuration with every optional value filled.
func DefaultConfig() *Config {
	return &Config{
		Resolver: ResolverConfig{
			Source:    resolver.DefaultSource,
			UserAgent: resolver.DefaultUserAgent,
			Timeout:   resolver.DefaultTimeout,
		},
		Batch: BatchConfig{
			Size:   batch.DefaultSize,
			Pacing: batch.DefaultPacing,
		},
		Logging: LoggingConfig{
			Level: string(logging.LevelInfo),
		},
	}
}

// ResolverClientConfig maps the resolver section onto resolver.Config.
func (c *Config) ResolverClientConfig() resolver.Config {
	return resolver.Config{
		Endpoint:  c.Resolver.Endpoint,
		Source:    c.Resolver.Source,
		UserAgent: c.Resolver.UserAgent,
		Timeout:   c.Resolver.Timeout,
	}
}

// ValidatorClientConfig is ResolverClientConfig pointed at the validator.
func (c *Config) ValidatorClientConfig() resolver.Config {
	rc := c.ResolverClientConfig()
	rc.Endpoint = c.Validator.Endpoint
	return rc
}

// BatchOptions maps the batch section onto batch.Options. A configured zero
// pacing disables the delay rather than selecting the default. Per-call
// timeouts stay with the resolver client.
func (c *Config) BatchOptions() batch.Options {
	pacing := c.Batch.Pacing
	if pacing == 0 {
		pacing = -1
	}
	return batch.Options{
		Size:         c.Batch.Size,
		Pacing:       pacing,
		RateLimitRPS: c.Batch.RateLimitRPS,
	}
}

// LoggerConfig maps the logging section onto logging.Config.
func (c *Config) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.Level(c.Logging.Level)
	cfg.Pretty = c.Logging.Pretty
	return cfg
}
