package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/redact"
)

// Validator checks single addresses against the email-validation webhook.
type Validator struct {
	t      *transport
	source string
	logger zerolog.Logger
	now    func() time.Time
}

type validateRequest struct {
	Email     string `json:"email"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

// NewValidator builds a Validator for cfg.Endpoint.
func NewValidator(cfg Config, logger zerolog.Logger) (*Validator, error) {
	cfg = cfg.withDefaults()
	t, err := newTransport(cfg)
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}
	return &Validator{
		t:      t,
		source: cfg.Source,
		logger: logger.With().Str("component", "validator").Logger(),
		now:    time.Now,
	}, nil
}

// Validate makes a single call for email. Failures become an ERROR verdict.
func (v *Validator) Validate(ctx context.Context, email string) outcome.Validation {
	email = strings.TrimSpace(email)
	if email == "" {
		return v.failed(email, errors.New("email is required"))
	}

	f, err := v.t.postJSON(ctx, validateRequest{
		Email:     email,
		Source:    v.source,
		Timestamp: v.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		resolverErrorsTotal.WithLabelValues(string(Classify(err))).Inc()
		return v.failed(email, err)
	}

	verdict := verdictOf(f)
	validatorRequestsTotal.WithLabelValues(string(verdict)).Inc()
	v.logger.Debug().Str("email", email).Str("verdict", string(verdict)).Msg("email validated")
	return outcome.Validation{
		Email:      email,
		Verdict:    verdict,
		Timestamp:  v.now().UTC(),
		Attributes: f.rest(),
	}
}

func (v *Validator) failed(email string, err error) outcome.Validation {
	msg := redact.Secrets(err.Error())
	validatorRequestsTotal.WithLabelValues(string(outcome.VerdictError)).Inc()
	v.logger.Warn().Str("email", email).Str("error", msg).Msg("email validation failed")
	return outcome.Validation{
		Email:     email,
		Verdict:   outcome.VerdictError,
		Error:     msg,
		Timestamp: v.now().UTC(),
	}
}

// verdictOf reads the upstream answer. The upstream schema is not fixed, so
// "valid", "isValid" and "status" are all honoured; a positive answer on any
// of them wins over a negative one.
func verdictOf(f fields) outcome.Verdict {
	valid, hasValid := f.boolean("valid")
	isValid, hasIsValid := f.boolean("isValid")
	status, _ := f.str("status")

	switch {
	case (hasValid && valid) || (hasIsValid && isValid) || status == string(outcome.VerdictValid):
		return outcome.VerdictValid
	case (hasValid && !valid) || (hasIsValid && !isValid) || status == string(outcome.VerdictInvalid):
		return outcome.VerdictInvalid
	default:
		return outcome.VerdictUnknown
	}
}
