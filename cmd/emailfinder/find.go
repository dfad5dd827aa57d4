package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/shpitdev/email-finder-pipeline/internal/app"
	"github.com/shpitdev/email-finder-pipeline/internal/config"
	localio "github.com/shpitdev/email-finder-pipeline/pkg/pipeline/io/local"
	"github.com/shpitdev/email-finder-pipeline/pkg/resolver"
)

func (c *cli) newFindCommand() *cobra.Command {
	var input string
	var doc localio.Document

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Resolve a single person",
		Long: `Find resolves one person given as separate fields. The domain may be a bare
domain or a company website URL; it is reduced to the host name.

Examples:
  emailfinder find --first-name Jane --last-name Smith --company-website https://www.example.org
  echo '{"firstName":"Jane","lastName":"Smith","domain":"example.org"}' | emailfinder find -i -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger, stop, err := c.setup(ctx, (*config.Config).Validate)
			if err != nil {
				return err
			}
			defer stop()

			q := doc
			if strings.TrimSpace(input) != "" {
				loaded, err := localio.DocumentFile{Path: input}.Load(ctx)
				if err != nil {
					return &app.InputError{Err: err}
				}
				q = overlay(loaded, doc)
			}

			client, err := resolver.New(cfg.ResolverClientConfig(), logger)
			if err != nil {
				return &app.InputError{Err: err}
			}
			runID := app.NewRunID()
			sink, err := app.OpenSink(ctx, c.output, runID, c.stdout)
			if err != nil {
				return err
			}
			r := &app.Runner{Dispatcher: client, Sink: sink, Logger: logger, RunID: runID}
			report, runErr := r.RunSingle(ctx, q)
			if err := sink.Close(); err != nil && runErr == nil {
				runErr = err
			}
			if !c.noSummary && report.Statistics.Type != "" {
				app.PrintSummary(c.stderr, report)
			}
			return runErr
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "Optional input document with firstName, lastName, domain or companyWebsite")
	f.StringVar(&doc.FirstName, "first-name", "", "First name")
	f.StringVar(&doc.LastName, "last-name", "", "Last name")
	f.StringVar(&doc.Domain, "domain", "", "Company domain")
	f.StringVar(&doc.CompanyWebsite, "company-website", "", "Company website, used when --domain is empty")
	return cmd
}

// overlay lays non-empty flag fields over a loaded document.
func overlay(base, flags localio.Document) localio.Document {
	if flags.FirstName != "" {
		base.FirstName = flags.FirstName
	}
	if flags.LastName != "" {
		base.LastName = flags.LastName
	}
	if flags.Domain != "" {
		base.Domain = flags.Domain
	}
	if flags.CompanyWebsite != "" {
		base.CompanyWebsite = flags.CompanyWebsite
	}
	if flags.Email != "" {
		base.Email = flags.Email
	}
	return base
}
