package track

import (
	"errors"
	"sync/atomic"
)

// tracker holds the per-parameter state: the keyword name (empty for
// positional-only slots), the immutable watched-value set, and the counters.
// Counters are atomics so concurrent calls never lose increments; everything
// else is fixed at construction.
type tracker struct {
	name          string
	watched       []any
	supplied      atomic.Int64
	watchedCounts []atomic.Int64
}

func newTracker(spec ParamSpec) *tracker {
	t := &tracker{name: spec.Name}
	if len(spec.Watch) > 0 {
		t.watched = make([]any, len(spec.Watch))
		copy(t.watched, spec.Watch)
		t.watchedCounts = make([]atomic.Int64, len(t.watched))
	}
	return t
}

// record accounts one supplied value. Identity comparison runs first against
// every watched value; only when nothing is identical does the fallible
// equality pass run, first match wins. Non-fatal comparison failures go to
// onErr and the candidate counts as not equal. A fatal failure is returned
// and aborts the caller's in-flight call.
func (t *tracker) record(v any, onErr func(error)) error {
	t.supplied.Add(1)
	if len(t.watched) == 0 {
		return nil
	}

	idx := -1
	for i, w := range t.watched {
		if identical(w, v) {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, w := range t.watched {
			eq, err := equalValues(w, v)
			if err != nil {
				if errors.Is(err, ErrComparisonFatal) {
					return err
				}
				if onErr != nil {
					onErr(err)
				}
				continue
			}
			if eq {
				idx = i
				break
			}
		}
	}
	if idx >= 0 {
		t.watchedCounts[idx].Add(1)
	}
	return nil
}
