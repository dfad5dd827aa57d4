package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
)

// EmailValidator checks one address. Implementations report failures in the
// returned verdict.
type EmailValidator interface {
	Validate(ctx context.Context, email string) outcome.Validation
}

// ValidationSink persists validation records.
type ValidationSink interface {
	StoreValidation(ctx context.Context, v outcome.Validation) error
}

// RunValidate validates a single address and emits the verdict. An empty
// address is an input error.
func RunValidate(ctx context.Context, email string, v EmailValidator, sink ValidationSink, logger zerolog.Logger) (outcome.Validation, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return outcome.Validation{}, &InputError{Err: errors.New("email is required")}
	}

	res := v.Validate(ctx, email)
	logger.Info().Str("verdict", string(res.Verdict)).Msg("validation complete")

	if err := sink.StoreValidation(context.WithoutCancel(ctx), res); err != nil {
		return res, fmt.Errorf("emit validation: %w", err)
	}
	return res, nil
}
