package config

import (
	"fmt"
	"strings"

	"github.com/shpitdev/email-finder-pipeline/pkg/resolver"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the settings used by the finder commands (run, find).
// Every problem is reported, not just the first.
func (c *Config) Validate() error {
	return c.validate(true, false)
}

// ValidateForValidation checks the settings used by the validate command,
// which needs the validator endpoint but not the resolver endpoint.
func (c *Config) ValidateForValidation() error {
	return c.validate(false, true)
}

func (c *Config) validate(needResolver, needValidator bool) error {
	var errs ValidationErrors

	errs = append(errs, endpoint("resolver.endpoint", c.Resolver.Endpoint, needResolver)...)
	errs = append(errs, endpoint("validator.endpoint", c.Validator.Endpoint, needValidator)...)

	if c.Resolver.Timeout <= 0 {
		errs = append(errs, ValidationError{Field: "resolver.timeout", Message: fmt.Sprintf("must be positive, got %s", c.Resolver.Timeout)})
	}
	if c.Batch.Size < 1 {
		errs = append(errs, ValidationError{Field: "batch.size", Message: fmt.Sprintf("must be at least 1, got %d", c.Batch.Size)})
	}
	if c.Batch.Pacing < 0 {
		errs = append(errs, ValidationError{Field: "batch.pacing", Message: fmt.Sprintf("must not be negative, got %s", c.Batch.Pacing)})
	}
	if c.Batch.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{Field: "batch.rate_limit_rps", Message: fmt.Sprintf("must not be negative, got %g", c.Batch.RateLimitRPS)})
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error", "disabled":
	default:
		errs = append(errs, ValidationError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func endpoint(field, raw string, required bool) []ValidationError {
	if raw == "" {
		if required {
			return []ValidationError{{Field: field, Message: "is required"}}
		}
		return nil
	}
	if err := resolver.ValidateEndpoint(raw); err != nil {
		return []ValidationError{{Field: field, Message: err.Error()}}
	}
	return nil
}
