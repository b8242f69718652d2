// Package track provides transparent call interception with usage accounting.
//
// A Wrapper sits in front of an existing callable and counts how the callable
// is actually used: total invocations, invocations that returned an error,
// invocations whose arguments fell outside the configured parameter shape,
// and, per parameter, how often it was supplied and how often it held one of
// a fixed set of watched values.
//
// It is a pure accounting layer: no execution changes, no logging, no I/O.
// The wrapped callable always receives the complete, unmodified argument
// list, and its result or error is propagated unchanged. The only externally
// visible side effect is counter mutation, observable through the snapshot
// accessors.
package track
