package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Keys understood by the loader. Flags bind to these names.
const (
	KeyResolverEndpoint  = "resolver.endpoint"
	KeyResolverSource    = "resolver.source"
	KeyResolverUserAgent = "resolver.user_agent"
	KeyResolverTimeout   = "resolver.timeout"
	KeyValidatorEndpoint = "validator.endpoint"
	KeyBatchSize         = "batch.size"
	KeyBatchPacing       = "batch.pacing"
	KeyBatchRateLimit    = "batch.rate_limit_rps"
	KeyLoggingLevel      = "logging.level"
	KeyLoggingPretty     = "logging.pretty"
	KeyMetricsAddr       = "metrics.addr"
)

// NewViper returns a viper instance with defaults registered for every key and
// EMAILFINDER_* environment overrides enabled (resolver.endpoint is read from
// EMAILFINDER_RESOLVER_ENDPOINT).
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault(KeyResolverEndpoint, d.Resolver.Endpoint)
	v.SetDefault(KeyResolverSource, d.Resolver.Source)
	v.SetDefault(KeyResolverUserAgent, d.Resolver.UserAgent)
	v.SetDefault(KeyResolverTimeout, d.Resolver.Timeout)
	v.SetDefault(KeyValidatorEndpoint, d.Validator.Endpoint)
	v.SetDefault(KeyBatchSize, d.Batch.Size)
	v.SetDefault(KeyBatchPacing, d.Batch.Pacing)
	v.SetDefault(KeyBatchRateLimit, d.Batch.RateLimitRPS)
	v.SetDefault(KeyLoggingLevel, d.Logging.Level)
	v.SetDefault(KeyLoggingPretty, d.Logging.Pretty)
	v.SetDefault(KeyMetricsAddr, d.Metrics.Addr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads an optional YAML file into v and decodes the merged settings.
// An empty configPath skips the file.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if strings.TrimSpace(configPath) != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	substituteEnvVars(cfg)
	normalize(cfg)
	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

func substituteEnvVars(cfg *Config) {
	cfg.Resolver.Endpoint = expandEnvVar(cfg.Resolver.Endpoint)
	cfg.Resolver.Source = expandEnvVar(cfg.Resolver.Source)
	cfg.Validator.Endpoint = expandEnvVar(cfg.Validator.Endpoint)
	cfg.Metrics.Addr = expandEnvVar(cfg.Metrics.Addr)
}

// expandEnvVar expands ${VAR} or $VAR; unset variables are left verbatim.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

func normalize(cfg *Config) {
	cfg.Resolver.Endpoint = strings.TrimSpace(cfg.Resolver.Endpoint)
	cfg.Validator.Endpoint = strings.TrimSpace(cfg.Validator.Endpoint)
	cfg.Metrics.Addr = strings.TrimSpace(cfg.Metrics.Addr)
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
}
