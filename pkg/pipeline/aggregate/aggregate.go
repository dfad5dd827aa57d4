// Package aggregate collects outcome records, forwards them to a sink as
// batches complete and produces the final run statistics.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/core"
)

// Aggregator owns every record of a run from creation to emission. It is
// driven from a single goroutine and is not safe for concurrent use.
type Aggregator struct {
	sink    core.Sink
	logger  zerolog.Logger
	records []outcome.Record
	now     func() time.Time
	done    bool
}

func New(sink core.Sink, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		sink:   sink,
		logger: logger.With().Str("component", "aggregator").Logger(),
		now:    time.Now,
	}
}

// Append emits records with one sink call and keeps them for Finalize.
// Records are kept only once the sink accepted them.
func (a *Aggregator) Append(ctx context.Context, records []outcome.Record) error {
	if a.done {
		return fmt.Errorf("aggregate: append after finalize")
	}
	if len(records) == 0 {
		return nil
	}
	if err := a.sink.Store(ctx, records); err != nil {
		return fmt.Errorf("store %d records: %w", len(records), err)
	}
	a.records = append(a.records, records...)
	for _, r := range records {
		recordsTotal.WithLabelValues(string(r.Status)).Inc()
	}
	a.logger.Debug().Int("records", len(records)).Int("stored", len(a.records)).Msg("records stored")
	return nil
}

// Records returns a copy of every record appended so far.
func (a *Aggregator) Records() []outcome.Record {
	out := make([]outcome.Record, len(a.records))
	copy(out, a.records)
	return out
}

// Len reports how many records were appended.
func (a *Aggregator) Len() int {
	return len(a.records)
}

// Finalize counts the appended records by status and emits the statistics
// record. It may be called once.
func (a *Aggregator) Finalize(ctx context.Context) (outcome.Statistics, error) {
	if a.done {
		return outcome.Statistics{}, fmt.Errorf("aggregate: already finalized")
	}
	a.done = true

	stats := outcome.Count(a.records, a.now())
	if err := a.sink.StoreStatistics(ctx, stats); err != nil {
		return stats, fmt.Errorf("store statistics: %w", err)
	}
	a.logger.Info().
		Int("total", stats.Total).
		Int("found", stats.Found).
		Int("not_found", stats.NotFound).
		Int("errors", stats.Errors).
		Msg("final statistics")
	return stats, nil
}
