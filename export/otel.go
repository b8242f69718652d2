package export

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/callstats/registry"
)

// Bridge exposes a registry's wrapper counters through an OpenTelemetry
// meter. Counters are observable: values are read from wrapper snapshots at
// collection time, so the calling hot path carries no extra instrumentation
// cost.
//
// Contract:
// - Concurrency: safe for concurrent use; collection reads atomic snapshots.
// - Errors: a failed observation callback is surfaced by the SDK, not here.
type Bridge struct {
	registration metric.Registration
}

// NewBridge registers observable counters for every wrapper in reg:
// call.stats.total, call.stats.errors, call.stats.invalid_args per function,
// and call.stats.param.supplied per function/parameter pair.
func NewBridge(meter metric.Meter, reg *registry.Registry) (*Bridge, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if reg == nil {
		return nil, ErrNilRegistry
	}

	total, err := meter.Int64ObservableCounter(
		"call.stats.total",
		metric.WithDescription("Total calls through the wrapper"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}
	errCount, err := meter.Int64ObservableCounter(
		"call.stats.errors",
		metric.WithDescription("Calls whose forwarded result was an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}
	invalid, err := meter.Int64ObservableCounter(
		"call.stats.invalid_args",
		metric.WithDescription("Calls with arguments outside the configured shape"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}
	supplied, err := meter.Int64ObservableCounter(
		"call.stats.param.supplied",
		metric.WithDescription("Calls in which the parameter received a value"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	registration, err := meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			for _, fs := range reg.Snapshot(false) {
				fnAttr := attribute.String("function", fs.Name)
				opt := metric.WithAttributes(fnAttr)

				o.ObserveInt64(total, fs.TotalCalls, opt)
				o.ObserveInt64(errCount, fs.ErrorResults, opt)
				o.ObserveInt64(invalid, fs.InvalidArgCalls, opt)

				for i, p := range fs.Params {
					name := p.Name
					if name == "" {
						name = fmt.Sprintf("pos%d", i)
					}
					o.ObserveInt64(supplied, p.Supplied, metric.WithAttributes(
						fnAttr,
						attribute.String("param", name),
					))
				}
			}
			return nil
		},
		total, errCount, invalid, supplied,
	)
	if err != nil {
		return nil, err
	}

	return &Bridge{registration: registration}, nil
}

// Close unregisters the observation callback.
func (b *Bridge) Close() error {
	return b.registration.Unregister()
}
