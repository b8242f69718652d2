package track

import (
	"sync/atomic"
)

// Func is the generic call shape accepted and forwarded by a Wrapper: an
// ordered list of positional values plus a keyword-name-to-value mapping.
// Either may be nil/empty.
type Func func(args []any, kwargs map[string]any) (any, error)

// Wrapper intercepts calls to a wrapped callable and accumulates usage
// statistics. It is invoked exactly like the callable it wraps; the
// forwarded arguments, result, and error are never altered.
//
// Contract:
//   - Concurrency: safe for concurrent use. Counters are atomic; the
//     parameter layout and watched-value sets are immutable after New.
//   - Errors: only the wrapped callable's own errors and fatal comparison
//     failures cross the Call boundary. Everything else is absorbed into
//     statistics.
//   - Ownership: argument values are borrowed for the duration of a call;
//     watched values are retained for the wrapper's lifetime.
type Wrapper struct {
	wrapped        Func
	params         []*tracker
	posOnly        int
	posLimit       atomic.Int64
	totalCalls     atomic.Int64
	errorResults   atomic.Int64
	invalidArgs    atomic.Int64
	onCompareError func(error)
}

// Option configures a Wrapper at construction.
type Option func(*Wrapper)

// WithComparisonErrorHook sets the hook receiving non-fatal watched-value
// comparison failures. The default discards them.
func WithComparisonErrorHook(fn func(error)) Option {
	return func(w *Wrapper) {
		w.onCompareError = fn
	}
}

// New wraps the given callable with usage tracking. specs lists one entry per
// parameter slot, positional-only slots first. The positional limit
// initializes to the total slot count, so keyword parameters may also be
// passed positionally until SetPositionalLimit tightens the boundary.
func New(wrapped Func, specs []ParamSpec, opts ...Option) (*Wrapper, error) {
	if wrapped == nil {
		return nil, ErrNilCallable
	}
	if err := validateSpecs(specs); err != nil {
		return nil, err
	}

	w := &Wrapper{wrapped: wrapped}
	w.params = make([]*tracker, len(specs))
	for i, s := range specs {
		w.params[i] = newTracker(s)
		if s.Name == "" {
			w.posOnly = i + 1
		}
	}
	w.posLimit.Store(int64(len(specs)))

	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Call records the supplied arguments against the configured parameter shape
// and forwards them, complete and unmodified, to the wrapped callable.
//
// Positional arguments beyond the positional limit and keyword arguments
// whose name matches no tracker mark the call as having an invalid shape;
// the call still proceeds. A failed forward is counted and the error is
// propagated unchanged.
func (w *Wrapper) Call(args []any, kwargs map[string]any) (any, error) {
	invalid := false

	nvalid := len(args)
	if limit := int(w.posLimit.Load()); nvalid > limit {
		invalid = true
		nvalid = limit
	}
	for i := 0; i < nvalid; i++ {
		if err := w.params[i].record(args[i], w.onCompareError); err != nil {
			return nil, err
		}
	}

	for name, value := range kwargs {
		t := w.lookupKeyword(name)
		if t == nil {
			invalid = true
			continue
		}
		if err := t.record(value, w.onCompareError); err != nil {
			return nil, err
		}
	}

	w.totalCalls.Add(1)
	if invalid {
		w.invalidArgs.Add(1)
	}

	res, err := w.wrapped(args, kwargs)
	if err != nil {
		w.errorResults.Add(1)
	}
	return res, err
}

// lookupKeyword scans the trackers past the positional-only prefix.
// Positional-only slots are never matched by name.
func (w *Wrapper) lookupKeyword(name string) *tracker {
	for _, t := range w.params[w.posOnly:] {
		if t.name == name {
			return t
		}
	}
	return nil
}

// Bind returns the callable for method-style access. A nil receiver yields
// the wrapper's own entry point unchanged; otherwise every call is made with
// the receiver prepended to the positional arguments.
func (w *Wrapper) Bind(recv any) Func {
	if recv == nil {
		return w.Call
	}
	return func(args []any, kwargs map[string]any) (any, error) {
		bound := make([]any, 0, len(args)+1)
		bound = append(bound, recv)
		bound = append(bound, args...)
		return w.Call(bound, kwargs)
	}
}

// SetPositionalLimit moves the boundary past which positional arguments are
// counted as invalid. n must lie in [positional-only count, parameter count].
// The update is atomic with respect to concurrent calls. Lowering the limit
// to the positional-only count retroactively enforces keyword-only semantics
// for the trailing parameters.
func (w *Wrapper) SetPositionalLimit(n int) error {
	if n < w.posOnly || n > len(w.params) {
		return ErrPositionalLimit
	}
	w.posLimit.Store(int64(n))
	return nil
}

// PositionalLimit reports the current positional boundary.
func (w *Wrapper) PositionalLimit() int {
	return int(w.posLimit.Load())
}

// NumParams reports the number of tracked parameter slots.
func (w *Wrapper) NumParams() int {
	return len(w.params)
}

// Counts returns the lifetime call counters: total calls, calls whose
// forwarded result was an error, and calls with an invalid argument shape.
func (w *Wrapper) Counts() (total, errorResults, invalidArgs int64) {
	return w.totalCalls.Load(), w.errorResults.Load(), w.invalidArgs.Load()
}

// ParamStat is the snapshot of one parameter slot, in tracker order.
type ParamStat struct {
	// Name is the keyword name, or empty for a positional-only slot.
	Name string

	// Supplied is the number of calls in which the slot received a value.
	Supplied int64

	// Watched lists the tracked values, nil when the slot watches none.
	Watched []any

	// WatchedCounts is parallel to Watched, nil when Watched is nil.
	WatchedCounts []int64
}

// ParamStats returns a snapshot of every parameter slot in declaration
// order. The returned slices are copies; watched values are shared.
func (w *Wrapper) ParamStats() []ParamStat {
	stats := make([]ParamStat, len(w.params))
	for i, t := range w.params {
		s := ParamStat{
			Name:     t.name,
			Supplied: t.supplied.Load(),
		}
		if t.watched != nil {
			s.Watched = make([]any, len(t.watched))
			copy(s.Watched, t.watched)
			s.WatchedCounts = make([]int64, len(t.watchedCounts))
			for j := range t.watchedCounts {
				s.WatchedCounts[j] = t.watchedCounts[j].Load()
			}
		}
		stats[i] = s
	}
	return stats
}
