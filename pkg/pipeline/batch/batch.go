// Package batch runs work in fixed-size groups, one group after another, with
// staggered starts inside each group.
package batch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultSize   = 10
	DefaultPacing = time.Second
)

type Options struct {
	// Size is the maximum number of items per group.
	Size int

	// Pacing is the start offset between consecutive dispatched items of a
	// group: the k-th dispatched item starts k*Pacing after the group begins.
	// Zero selects DefaultPacing. Set to <0 to disable.
	Pacing time.Duration

	// RateLimitRPS is a global limit across all groups. Set to <=0 to disable.
	RateLimitRPS float64

	// RequestTimeout bounds each dispatch. Set to <=0 to leave it to the dispatcher.
	RequestTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.Pacing == 0 {
		o.Pacing = DefaultPacing
	}
	if o.Pacing < 0 {
		o.Pacing = 0
	}
	return o
}

// Item is one scheduled input. An item with Ready set is already terminal: it
// keeps its position in the output, takes no pacing slot and is never dispatched.
type Item[In any, Out any] struct {
	Input In
	Ready *Out
}

// Group is a completed batch, passed to the callback before the next one starts.
type Group[Out any] struct {
	// Number is 1-based; Total is the number of groups in the run.
	Number int
	Total  int
	// Offset is the index of the group's first item in the full input.
	Offset int
	// Outputs are in input order regardless of completion order.
	Outputs    []Out
	Dispatched int
	Duration   time.Duration
}

// Groups returns how many groups n items form at the given size.
func Groups(n, size int) int {
	if size <= 0 {
		size = DefaultSize
	}
	return (n + size - 1) / size
}

// Run partitions items into consecutive groups of at most opts.Size and runs
// them strictly in sequence. Within a group every dispatch runs concurrently
// with staggered starts, and the group is joined before onGroup is called.
//
// dispatch must not fail; it reports problems inside Out. Run returns early
// only when onGroup fails or ctx is done between groups; the group in flight
// at cancellation still completes and is reported.
func Run[In any, Out any](
	ctx context.Context,
	items []Item[In, Out],
	dispatch func(context.Context, In) Out,
	onGroup func(Group[Out]) error,
	opts Options,
) ([]Out, error) {
	opts = opts.withDefaults()

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}

	total := Groups(len(items), opts.Size)
	out := make([]Out, 0, len(items))

	for n, start := 1, 0; start < len(items); n, start = n+1, start+opts.Size {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		end := min(start+opts.Size, len(items))

		begin := time.Now()
		outputs, dispatched := runGroup(ctx, items[start:end], dispatch, limiter, opts)
		elapsed := time.Since(begin)
		batchesTotal.Inc()
		batchDuration.Observe(elapsed.Seconds())

		out = append(out, outputs...)
		if onGroup == nil {
			continue
		}
		if err := onGroup(Group[Out]{
			Number:     n,
			Total:      total,
			Offset:     start,
			Outputs:    outputs,
			Dispatched: dispatched,
			Duration:   elapsed,
		}); err != nil {
			return out, err
		}
	}
	return out, nil
}

func runGroup[In any, Out any](
	ctx context.Context,
	items []Item[In, Out],
	dispatch func(context.Context, In) Out,
	limiter *rate.Limiter,
	opts Options,
) ([]Out, int) {
	begin := time.Now()
	outputs := make([]Out, len(items))

	var wg sync.WaitGroup
	slot := 0
	for i, item := range items {
		if item.Ready != nil {
			outputs[i] = *item.Ready
			continue
		}
		startAt := begin.Add(time.Duration(slot) * opts.Pacing)
		slot++

		wg.Add(1)
		go func(i int, in In) {
			defer wg.Done()
			// A canceled ctx cuts the waits short; dispatch still runs so the
			// item gets its terminal output.
			sleepUntil(ctx, startAt)
			if limiter != nil {
				_ = limiter.Wait(ctx)
			}
			outputs[i] = dispatchOne(ctx, in, dispatch, opts.RequestTimeout)
		}(i, item.Input)
	}
	wg.Wait()
	return outputs, slot
}

func dispatchOne[In any, Out any](ctx context.Context, in In, dispatch func(context.Context, In) Out, timeout time.Duration) Out {
	if timeout <= 0 {
		return dispatch(ctx, in)
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return dispatch(reqCtx, in)
}

func sleepUntil(ctx context.Context, at time.Time) {
	d := time.Until(at)
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
