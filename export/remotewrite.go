package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eryajf/promwrite"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"

	"github.com/jonwraymond/callstats/registry"
)

// RemoteWriteConfig configures the Prometheus remote-write pusher.
type RemoteWriteConfig struct {
	// URL is the remote-write endpoint. Required.
	URL string

	// Interval between pushes. Default: 30s.
	Interval time.Duration

	// Namespace prefixes every metric name. Default: "callstats".
	Namespace string

	// ServiceName and Instance become labels on every series, when set.
	ServiceName string
	Instance    string

	// CustomLabels are attached to every series.
	CustomLabels map[string]string

	// Registry is the wrapper inventory to export. Default: registry.Default.
	Registry *registry.Registry

	// Logger receives push diagnostics. Default: no-op.
	Logger *zap.Logger

	// Clock drives the push interval. Default: clockz.RealClock.
	Clock clockz.Clock
}

// RemoteWriter pushes wrapper counters to a Prometheus remote-write endpoint
// on an interval.
type RemoteWriter struct {
	cfg      RemoteWriteConfig
	client   *promwrite.Client
	registry *registry.Registry
	logger   *zap.Logger
	clock    clockz.Clock

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	done    chan struct{}
}

// NewRemoteWriter creates a writer from config, applying defaults.
func NewRemoteWriter(cfg RemoteWriteConfig) (*RemoteWriter, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "callstats"
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.Default
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockz.RealClock
	}

	return &RemoteWriter{
		cfg:      cfg,
		client:   promwrite.NewClient(cfg.URL),
		registry: cfg.Registry,
		logger:   cfg.Logger,
		clock:    cfg.Clock,
	}, nil
}

// Start launches the periodic push loop.
func (w *RemoteWriter) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}
	w.started = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop()
	return nil
}

// Stop halts the loop and performs one final push so counters accumulated
// since the last tick are not lost.
func (w *RemoteWriter) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	close(w.stop)
	done := w.done
	w.mu.Unlock()

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := w.Push(ctx); err != nil {
		w.logger.Warn("final remote write push failed", zap.Error(err))
	}
}

func (w *RemoteWriter) loop() {
	defer close(w.done)

	ticker := w.clock.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			if err := w.Push(ctx); err != nil {
				w.logger.Warn("remote write push failed", zap.Error(err))
			}
			cancel()
		case <-w.stop:
			return
		}
	}
}

// Push writes one sample per counter for every called wrapper.
func (w *RemoteWriter) Push(ctx context.Context) error {
	ts := w.timeSeries(time.Now())
	if len(ts) == 0 {
		return nil
	}

	_, err := w.client.Write(ctx, &promwrite.WriteRequest{TimeSeries: ts})
	if err != nil {
		return fmt.Errorf("export: writing time series: %w", err)
	}
	w.logger.Debug("pushed usage counters", zap.Int("series", len(ts)))
	return nil
}

func (w *RemoteWriter) timeSeries(now time.Time) []promwrite.TimeSeries {
	snapshot := w.registry.Snapshot(true)

	var out []promwrite.TimeSeries
	for _, fs := range snapshot {
		base := []promwrite.Label{{Name: "function", Value: fs.Name}}
		if w.cfg.ServiceName != "" {
			base = append(base, promwrite.Label{Name: "service", Value: w.cfg.ServiceName})
		}
		if w.cfg.Instance != "" {
			base = append(base, promwrite.Label{Name: "instance", Value: w.cfg.Instance})
		}
		for k, v := range w.cfg.CustomLabels {
			base = append(base, promwrite.Label{Name: k, Value: v})
		}

		out = append(out,
			w.series("calls_total", base, nil, fs.TotalCalls, now),
			w.series("call_errors_total", base, nil, fs.ErrorResults, now),
			w.series("invalid_args_total", base, nil, fs.InvalidArgCalls, now),
		)

		for i, p := range fs.Params {
			name := p.Name
			if name == "" {
				name = fmt.Sprintf("pos%d", i)
			}
			paramLabel := []promwrite.Label{{Name: "param", Value: name}}
			out = append(out, w.series("param_supplied_total", base, paramLabel, p.Supplied, now))
		}
	}
	return out
}

func (w *RemoteWriter) series(name string, base, extra []promwrite.Label, value int64, now time.Time) promwrite.TimeSeries {
	labels := make([]promwrite.Label, 0, len(base)+len(extra)+1)
	labels = append(labels, promwrite.Label{
		Name:  "__name__",
		Value: w.cfg.Namespace + "_" + name,
	})
	labels = append(labels, base...)
	labels = append(labels, extra...)

	return promwrite.TimeSeries{
		Labels: labels,
		Sample: promwrite.Sample{
			Time:  now,
			Value: float64(value),
		},
	}
}
