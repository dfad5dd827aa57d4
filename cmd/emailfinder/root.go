package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shpitdev/email-finder-pipeline/internal/app"
	"github.com/shpitdev/email-finder-pipeline/internal/config"
	"github.com/shpitdev/email-finder-pipeline/internal/logging"
	"github.com/shpitdev/email-finder-pipeline/internal/version"
)

// cli carries state shared by every subcommand of one invocation.
type cli struct {
	v      *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfgFile   string
	output    string
	noSummary bool
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{
		v:      config.NewViper(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
	d := config.DefaultConfig()

	root := &cobra.Command{
		Use:   "emailfinder",
		Short: "Batch email finder",
		Long: `Resolve people (first name, last name, company domain) to email addresses
through an email-discovery webhook.

Input entries are "First,Last,domain.com" (tab, semicolon or comma separated)
or "Full Name, domain.com". Results are written as JSON lines, one record per
input followed by a STATISTICS record.

Configuration is read from --config, EMAILFINDER_* environment variables and
flags, in increasing order of precedence.`,
		Version:       version.Current,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &app.InputError{Err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&c.cfgFile, "config", "c", "", "Path to a YAML configuration file")
	pf.StringVarP(&c.output, "output", "o", "-", "Output: -, <file>.jsonl, <file>.csv, sqlite://<path>, redis://host:port/db?key=<list>")
	pf.BoolVar(&c.noSummary, "no-summary", false, "Do not print the coloured summary to stderr")
	pf.String("endpoint", d.Resolver.Endpoint, "Resolver webhook URL (env: EMAILFINDER_RESOLVER_ENDPOINT)")
	pf.String("source", d.Resolver.Source, "Source tag sent with every request")
	pf.Duration("timeout", d.Resolver.Timeout, "Per-request timeout")
	pf.String("log-level", d.Logging.Level, "Log level (debug, info, warn, error, disabled)")
	pf.Bool("log-pretty", d.Logging.Pretty, "Human-readable console logs instead of JSON")
	pf.String("metrics-addr", d.Metrics.Addr, "Serve Prometheus metrics on this address during the run")
	c.bind(pf, map[string]string{
		config.KeyResolverEndpoint: "endpoint",
		config.KeyResolverSource:   "source",
		config.KeyResolverTimeout:  "timeout",
		config.KeyLoggingLevel:     "log-level",
		config.KeyLoggingPretty:    "log-pretty",
		config.KeyMetricsAddr:      "metrics-addr",
	})

	root.AddCommand(
		c.newRunCommand(),
		c.newFindCommand(),
		c.newValidateCommand(),
		c.newVersionCommand(),
	)
	return root
}

// bind ties viper keys to flags so a changed flag wins over file and env.
func (c *cli) bind(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		// Lookup cannot miss: every name is defined just above the call.
		_ = c.v.BindPFlag(key, fs.Lookup(name))
	}
}

// setup loads configuration, then builds the logger and the optional metrics
// server. The returned stop function shuts the metrics server down.
func (c *cli) setup(ctx context.Context, validate func(*config.Config) error) (*config.Config, zerolog.Logger, func(), error) {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), nil, &app.InputError{Err: err}
	}
	if err := validate(cfg); err != nil {
		return nil, zerolog.Nop(), nil, &app.InputError{Err: err}
	}

	lc := cfg.LoggerConfig()
	lc.Output = c.stderr
	logger := logging.Setup(lc)

	stop := func() {}
	if cfg.Metrics.Addr != "" {
		m, err := serveMetrics(cfg.Metrics.Addr, logging.Component(logger, "metrics"))
		if err != nil {
			return nil, logger, nil, &app.InputError{Err: err}
		}
		stop = func() { m.Shutdown(context.WithoutCancel(ctx)) }
	}
	return cfg, logger, stop, nil
}

func (c *cli) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version.String())
		},
	}
}
