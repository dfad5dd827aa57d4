// Package app wires inputs, the resolver, the batch scheduler and a sink into
// the finder runs exposed by the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shpitdev/email-finder-pipeline/internal/logging"
	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
	"github.com/shpitdev/email-finder-pipeline/pkg/person"
	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/aggregate"
	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/batch"
	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/core"
	localio "github.com/shpitdev/email-finder-pipeline/pkg/pipeline/io/local"
)

// Report describes a finished run.
type Report struct {
	RunID      string
	Records    []outcome.Record
	Statistics outcome.Statistics
	Duration   time.Duration
}

// Runner holds what every finder run needs. RunID is generated when empty.
type Runner struct {
	Dispatcher core.Dispatcher
	Sink       core.Sink
	Options    batch.Options
	Logger     zerolog.Logger
	RunID      string

	now   func() time.Time
	ready bool
}

func (r *Runner) init() {
	if r.ready {
		return
	}
	r.ready = true
	if r.RunID == "" {
		r.RunID = NewRunID()
	}
	if r.now == nil {
		r.now = time.Now
	}
	r.Logger = logging.WithRun(r.Logger, r.RunID)
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// RunBatch parses people, resolves them in batches and emits every record
// through the sink, one Store per batch, followed by the statistics record.
//
// Parse failures become ERROR records at their input position and are never
// dispatched. Dispatch failures are records too; only sink failures and
// cancellation end the run early. On cancellation the batch in flight is
// still emitted and statistics cover what was emitted.
func (r *Runner) RunBatch(ctx context.Context, people []string) (Report, error) {
	r.init()
	start := r.now()
	opts := r.Options
	size := opts.Size
	if size <= 0 {
		size = batch.DefaultSize
	}

	items := make([]batch.Item[person.Query, outcome.Record], len(people))
	var parseFailures int
	for i, raw := range people {
		q, err := person.Parse(raw)
		if err != nil {
			rec := outcome.ParseFailure(raw, err, r.now())
			items[i].Ready = &rec
			parseFailures++
			r.Logger.Warn().Int("index", i).Str("error", err.Error()).Msg("skipping unparseable person")
			continue
		}
		items[i].Input = q
	}

	r.Logger.Info().
		Int("people", len(people)).
		Int("parse_failures", parseFailures).
		Int("batch_size", size).
		Int("batches", batch.Groups(len(people), size)).
		Dur("pacing", opts.Pacing).
		Msg("run start")

	// Emission must outlive cancellation: the batch in flight and the final
	// statistics are still written.
	emitCtx := context.WithoutCancel(ctx)
	agg := aggregate.New(r.Sink, r.Logger)

	_, runErr := batch.Run(ctx, items, r.Dispatcher.Resolve, func(g batch.Group[outcome.Record]) error {
		if err := agg.Append(emitCtx, g.Outputs); err != nil {
			return err
		}
		r.Logger.Info().
			Int("batch", g.Number).
			Int("batches", g.Total).
			Int("dispatched", g.Dispatched).
			Int("processed", agg.Len()).
			Int("total", len(people)).
			Dur("duration", g.Duration).
			Msg("batch complete")
		return nil
	}, opts)

	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		r.Logger.Error().Err(runErr).Msg("run aborted")
		return Report{RunID: r.RunID, Records: agg.Records()}, fmt.Errorf("emit records: %w", runErr)
	}
	if runErr != nil {
		r.Logger.Warn().Int("emitted", agg.Len()).Int("total", len(people)).Msg("run canceled before all batches")
	}

	stats, err := agg.Finalize(emitCtx)
	report := Report{
		RunID:      r.RunID,
		Records:    agg.Records(),
		Statistics: stats,
		Duration:   r.now().Sub(start),
	}
	if err != nil {
		r.Logger.Error().Err(err).Msg("statistics not emitted")
		return report, err
	}
	if runErr != nil {
		return report, fmt.Errorf("run interrupted: %w", runErr)
	}
	return report, nil
}

// RunSingle resolves one query built from separate fields. Missing fields are
// an input error; a failed resolution is a record like any other.
func (r *Runner) RunSingle(ctx context.Context, doc localio.Document) (Report, error) {
	r.init()
	start := r.now()

	q, err := person.FromFields(doc.FirstName, doc.LastName, doc.Website())
	if err != nil {
		return Report{RunID: r.RunID}, &InputError{Err: err}
	}
	r.Logger.Info().Str("domain", q.Domain).Msg("single search start")

	rec := r.Dispatcher.Resolve(ctx, q)

	emitCtx := context.WithoutCancel(ctx)
	agg := aggregate.New(r.Sink, r.Logger)
	if err := agg.Append(emitCtx, []outcome.Record{rec}); err != nil {
		return Report{RunID: r.RunID}, fmt.Errorf("emit record: %w", err)
	}
	stats, err := agg.Finalize(emitCtx)
	return Report{
		RunID:      r.RunID,
		Records:    agg.Records(),
		Statistics: stats,
		Duration:   r.now().Sub(start),
	}, err
}
