package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/shpitdev/email-finder-pipeline/internal/app"
	"github.com/shpitdev/email-finder-pipeline/internal/config"
	localio "github.com/shpitdev/email-finder-pipeline/pkg/pipeline/io/local"
	"github.com/shpitdev/email-finder-pipeline/pkg/resolver"
)

func (c *cli) newValidateCommand() *cobra.Command {
	var input, email string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a single email address",
		Long: `Validate sends one address to the email-validation webhook and writes a
record with status VALID, INVALID, UNKNOWN or ERROR.

Example:
  emailfinder validate --validator-endpoint https://hooks.example.com/webhook/validate --email jane@example.org`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger, stop, err := c.setup(ctx, (*config.Config).ValidateForValidation)
			if err != nil {
				return err
			}
			defer stop()

			addr := email
			if addr == "" && strings.TrimSpace(input) != "" {
				doc, err := localio.DocumentFile{Path: input}.Load(ctx)
				if err != nil {
					return &app.InputError{Err: err}
				}
				addr = doc.Email
			}

			v, err := resolver.NewValidator(cfg.ValidatorClientConfig(), logger)
			if err != nil {
				return &app.InputError{Err: err}
			}
			sink, err := app.OpenValidationSink(c.output, c.stdout)
			if err != nil {
				return err
			}
			res, runErr := app.RunValidate(ctx, addr, v, sink, logger)
			if err := sink.Close(); err != nil && runErr == nil {
				runErr = err
			}
			if !c.noSummary && runErr == nil {
				app.PrintValidation(c.stderr, res)
			}
			return runErr
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", `Optional input document with an "email" field`)
	f.StringVar(&email, "email", "", "Address to validate")
	f.String("validator-endpoint", "", "Validation webhook URL (env: EMAILFINDER_VALIDATOR_ENDPOINT)")
	c.bind(f, map[string]string{config.KeyValidatorEndpoint: "validator-endpoint"})
	return cmd
}
