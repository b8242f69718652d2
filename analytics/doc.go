// Package analytics ships call-usage statistics to an analytics proxy.
//
// Client posts individual events to the proxy's /track endpoint, attaching a
// stable client id and runtime information, and honors the DO_NOT_TRACK and
// CI environment opt-outs. Uploader walks a wrapper registry and converts
// each wrapper's counters into usage events, plus one summary event for the
// whole package.
//
// Telemetry is strictly best-effort: a failed or disabled upload never
// affects the instrumented program.
package analytics
