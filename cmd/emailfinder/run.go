package main

import (
	"github.com/spf13/cobra"

	"github.com/shpitdev/email-finder-pipeline/internal/app"
	"github.com/shpitdev/email-finder-pipeline/internal/config"
	localio "github.com/shpitdev/email-finder-pipeline/pkg/pipeline/io/local"
	"github.com/shpitdev/email-finder-pipeline/pkg/resolver"
)

func (c *cli) newRunCommand() *cobra.Command {
	var input string
	var lines bool
	d := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve a batch of people",
		Long: `Run reads a document with a "people" array (JSON or YAML), or one entry per
line with --lines, and resolves every entry in batches. Each batch is sent
concurrently with staggered starts, and the next batch starts only after the
previous one is written.

Examples:
  emailfinder run --endpoint https://hooks.example.com/webhook/find -i people.json
  emailfinder run -i people.txt --lines -o results.csv --batch-size 20 --pacing 500ms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger, stop, err := c.setup(ctx, (*config.Config).Validate)
			if err != nil {
				return err
			}
			defer stop()

			people, err := localio.PeopleFile{Path: input, Lines: lines}.Load(ctx)
			if err != nil {
				return &app.InputError{Err: err}
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
			r := &app.Runner{
				Dispatcher: client,
				Sink:       sink,
				Options:    cfg.BatchOptions(),
				Logger:     logger,
				RunID:      runID,
			}
			report, runErr := r.RunBatch(ctx, people)
			if err := sink.Close(); err != nil && runErr == nil {
				runErr = err
			}
			// Statistics exist unless emission failed; a canceled run still has them.
			if !c.noSummary && report.Statistics.Type != "" {
				app.PrintSummary(c.stderr, report)
			}
			return runErr
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "-", "Input document, or - for stdin")
	f.BoolVar(&lines, "lines", false, "Read one raw person entry per line instead of a document")
	f.Int("batch-size", d.Batch.Size, "People per batch")
	f.Duration("pacing", d.Batch.Pacing, "Start offset between consecutive requests of a batch (0 disables)")
	f.Float64("rate-limit-rps", d.Batch.RateLimitRPS, "Global request rate cap, 0 disables")
	c.bind(f, map[string]string{
		config.KeyBatchSize:      "batch-size",
		config.KeyBatchPacing:    "pacing",
		config.KeyBatchRateLimit: "rate-limit-rps",
	})
	return cmd
}
