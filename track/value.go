package track

import (
	"fmt"
	"reflect"
)

// Equaler is the equality capability for caller-supplied values. Watched
// values or arguments implementing it take part in the slow-path match with
// their own comparison logic. Equal may fail; failures are reported to the
// wrapper's comparison-error hook and treated as "not equal" unless they
// match ErrComparisonFatal.
//
// Contract:
// - Concurrency: Equal may be called concurrently and must not mutate state.
// - Errors: returning an error is safe; panics are recovered and reported.
type Equaler interface {
	Equal(other any) (bool, error)
}

// identical is the fast-path comparison. It never invokes caller code:
// reference types compare by pointer, comparable value types by ==.
// Most call sites pass the same singleton values over and over, so this
// resolves nearly every match without touching user-defined equality.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	switch ta.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.Map, reflect.Func, reflect.UnsafePointer:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	case reflect.Slice:
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
		if ta.Comparable() {
			return a == b
		}
		return false
	}
}

// equalValues is the slow-path comparison. A watched value or argument with
// an Equal method decides equality itself; everything else falls back to
// reflect.DeepEqual. Panics out of user Equal implementations surface as
// ErrComparisonPanic.
func equalValues(watched, arg any) (eq bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			eq = false
			err = fmt.Errorf("%w: %v", ErrComparisonPanic, r)
		}
	}()

	if e, ok := watched.(Equaler); ok {
		return e.Equal(arg)
	}
	if e, ok := arg.(Equaler); ok {
		return e.Equal(watched)
	}
	return reflect.DeepEqual(watched, arg), nil
}
