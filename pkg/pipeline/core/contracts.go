package core

import (
	"context"

	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
	"github.com/shpitdev/email-finder-pipeline/pkg/person"
)

// InputAdapter loads input records for pipeline processing.
type InputAdapter[In any] interface {
	Load(ctx context.Context) ([]In, error)
}

// Sink persists emitted records. Store is called once per completed batch,
// StoreStatistics once at the end of a run.
type Sink interface {
	Store(ctx context.Context, records []outcome.Record) error
	StoreStatistics(ctx context.Context, stats outcome.Statistics) error
	Close() error
}

// Dispatcher resolves one query. Implementations never fail: every problem
// is reported inside the returned record.
type Dispatcher interface {
	Resolve(ctx context.Context, q person.Query) outcome.Record
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(ctx context.Context, q person.Query) outcome.Record

func (f DispatchFunc) Resolve(ctx context.Context, q person.Query) outcome.Record {
	return f(ctx, q)
}
