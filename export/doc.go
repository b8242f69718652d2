// Package export publishes accumulated call-usage counters to metric
// backends. The OpenTelemetry bridge exposes registry snapshots as
// observable counters collected on demand; the remote writer pushes the same
// snapshots to a Prometheus remote-write endpoint on an interval.
//
// Both consume only the read-only snapshot accessors; neither touches the
// counting hot path.
package export
