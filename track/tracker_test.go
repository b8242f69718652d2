package track

import (
	"errors"
	"testing"
)

// brokenEqual always fails its equality comparison.
type brokenEqual struct{ id int }

func (b *brokenEqual) Equal(other any) (bool, error) {
	return false, errors.New("equality is broken")
}

// panicEqual panics inside its equality comparison.
type panicEqual struct{}

func (p *panicEqual) Equal(other any) (bool, error) {
	panic("comparison exploded")
}

// fatalEqual fails with a fatal-class error.
type fatalEqual struct{}

func (f *fatalEqual) Equal(other any) (bool, error) {
	return false, Fatal(errors.New("resource exhausted"))
}

// valueEqual matches anything with the same ID, by value.
type valueEqual struct{ id int }

func (v *valueEqual) Equal(other any) (bool, error) {
	o, ok := other.(*valueEqual)
	return ok && o.id == v.id, nil
}

func okFunc() Func {
	return func(args []any, kwargs map[string]any) (any, error) { return nil, nil }
}

// TestRecord_IdentityFastPath verifies a watched value passed as the exact
// same object is counted even when its equality comparison is broken.
func TestRecord_IdentityFastPath(t *testing.T) {
	watched := &brokenEqual{id: 1}
	w, err := New(okFunc(), []ParamSpec{Positional(watched)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := w.Call([]any{watched}, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}

	if got := w.ParamStats()[0].WatchedCounts[0]; got != 1 {
		t.Errorf("expected identity match to count, got %d", got)
	}
}

// TestRecord_EqualityFallback verifies a distinct but equal object increments
// the watched counter exactly once.
func TestRecord_EqualityFallback(t *testing.T) {
	w, err := New(okFunc(), []ParamSpec{
		Positional(&valueEqual{id: 1}, &valueEqual{id: 2}),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := w.Call([]any{&valueEqual{id: 2}}, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}

	stats := w.ParamStats()[0]
	if stats.WatchedCounts[0] != 0 || stats.WatchedCounts[1] != 1 {
		t.Errorf("expected counts [0 1], got %v", stats.WatchedCounts)
	}
}

// TestRecord_DeepEqualFallback verifies uncomparable values fall back to
// structural equality.
func TestRecord_DeepEqualFallback(t *testing.T) {
	w, err := New(okFunc(), []ParamSpec{Positional([]int{1, 2})})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := w.Call([]any{[]int{1, 2}}, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := w.ParamStats()[0].WatchedCounts[0]; got != 1 {
		t.Errorf("expected structural match to count, got %d", got)
	}
}

// TestRecord_UnmatchedValue verifies an unmatched value counts only toward
// the aggregate supplied counter.
func TestRecord_UnmatchedValue(t *testing.T) {
	w, err := New(okFunc(), []ParamSpec{Positional(10, 20)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := w.Call([]any{99}, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}

	stats := w.ParamStats()[0]
	if stats.Supplied != 1 {
		t.Errorf("expected supplied=1, got %d", stats.Supplied)
	}
	for i, c := range stats.WatchedCounts {
		if c != 0 {
			t.Errorf("watched slot %d must stay zero, got %d", i, c)
		}
	}
}

// TestRecord_NonFatalComparisonFailure verifies a failing comparison is
// reported to the hook, treated as not equal, and the search continues to
// later candidates.
func TestRecord_NonFatalComparisonFailure(t *testing.T) {
	var hookErrs []error
	arg := &valueEqual{id: 2}

	w, err := New(okFunc(),
		[]ParamSpec{Positional(&brokenEqual{id: 1}, &valueEqual{id: 2})},
		WithComparisonErrorHook(func(err error) { hookErrs = append(hookErrs, err) }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := w.Call([]any{arg}, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}

	if len(hookErrs) != 1 {
		t.Fatalf("expected 1 hook error, got %d", len(hookErrs))
	}
	stats := w.ParamStats()[0]
	if stats.WatchedCounts[0] != 0 || stats.WatchedCounts[1] != 1 {
		t.Errorf("expected search to continue past the failure, counts %v", stats.WatchedCounts)
	}
}

// TestRecord_PanicRecovered verifies a panicking Equal does not crash the
// caller and surfaces through the hook as ErrComparisonPanic.
func TestRecord_PanicRecovered(t *testing.T) {
	var hookErr error
	w, err := New(okFunc(),
		[]ParamSpec{Positional(&panicEqual{})},
		WithComparisonErrorHook(func(err error) { hookErr = err }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := w.Call([]any{&panicEqual{}}, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !errors.Is(hookErr, ErrComparisonPanic) {
		t.Errorf("expected ErrComparisonPanic through the hook, got %v", hookErr)
	}

	total, _, _ := w.Counts()
	if total != 1 {
		t.Errorf("call must complete despite the panic, total=%d", total)
	}
}

// TestRecord_FatalComparisonAborts verifies a fatal-class comparison failure
// aborts the call before forwarding.
func TestRecord_FatalComparisonAborts(t *testing.T) {
	forwarded := false
	fn := func(args []any, kwargs map[string]any) (any, error) {
		forwarded = true
		return nil, nil
	}
	w, err := New(fn, []ParamSpec{Positional(&fatalEqual{})})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = w.Call([]any{&valueEqual{id: 1}}, nil)
	if !errors.Is(err, ErrComparisonFatal) {
		t.Fatalf("expected ErrComparisonFatal, got %v", err)
	}
	if forwarded {
		t.Error("fatal comparison failure must abort before forwarding")
	}

	// The aborted call never reached the total counter; the supplied counter
	// incremented earlier in the same call stays incremented.
	total, _, _ := w.Counts()
	if total != 0 {
		t.Errorf("aborted call must not count as completed, total=%d", total)
	}
	if got := w.ParamStats()[0].Supplied; got != 1 {
		t.Errorf("expected supplied=1 from the aborted call, got %d", got)
	}
}

// TestIdentical covers the fast-path comparison across kinds.
func TestIdentical(t *testing.T) {
	p := &valueEqual{id: 1}
	s := []int{1, 2}
	m := map[string]int{"a": 1}

	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{"same pointer", p, p, true},
		{"distinct pointers", p, &valueEqual{id: 1}, false},
		{"same int", 3, 3, true},
		{"different int", 3, 4, false},
		{"int vs int64", 3, int64(3), false},
		{"same string", "a", "a", true},
		{"same slice header", s, s, true},
		{"distinct equal slices", s, []int{1, 2}, false},
		{"same map", m, m, true},
		{"both nil", nil, nil, true},
		{"nil vs value", nil, 3, false},
	}
	for _, tc := range cases {
		if got := identical(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: identical=%v, want %v", tc.name, got, tc.want)
		}
	}
}
