package export

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/callstats/registry"
)

func TestNewRemoteWriter_RequiresURL(t *testing.T) {
	if _, err := NewRemoteWriter(RemoteWriteConfig{}); !errors.Is(err, ErrMissingURL) {
		t.Fatalf("expected ErrMissingURL, got %v", err)
	}
}

func TestPush_SendsSeries(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rw, err := NewRemoteWriter(RemoteWriteConfig{
		URL:      srv.URL,
		Registry: testRegistry(t),
	})
	if err != nil {
		t.Fatalf("NewRemoteWriter: %v", err)
	}

	if err := rw.Push(context.Background()); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if requests.Load() != 1 {
		t.Errorf("expected 1 remote write request, got %d", requests.Load())
	}
}

func TestPush_EmptyRegistryIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty registry")
	}))
	defer srv.Close()

	rw, err := NewRemoteWriter(RemoteWriteConfig{
		URL:      srv.URL,
		Registry: registry.New(),
	})
	if err != nil {
		t.Fatalf("NewRemoteWriter: %v", err)
	}
	if err := rw.Push(context.Background()); err != nil {
		t.Fatalf("Push: %v", err)
	}
}

func TestTimeSeries_Shape(t *testing.T) {
	rw, err := NewRemoteWriter(RemoteWriteConfig{
		URL:          "http://localhost:1",
		Namespace:    "callstats",
		ServiceName:  "svc",
		Instance:     "10.0.0.1",
		CustomLabels: map[string]string{"env": "test"},
		Registry:     testRegistry(t),
	})
	if err != nil {
		t.Fatalf("NewRemoteWriter: %v", err)
	}

	now := time.Now()
	series := rw.timeSeries(now)

	// Two wrappers: 3 counter series each, plus 2 param series for pkg.fn.
	if len(series) != 8 {
		t.Fatalf("expected 8 series, got %d", len(series))
	}

	names := map[string]bool{}
	for _, ts := range series {
		labels := map[string]string{}
		for _, l := range ts.Labels {
			labels[l.Name] = l.Value
		}
		names[labels["__name__"]] = true
		if labels["function"] == "" {
			t.Errorf("series %v missing function label", labels["__name__"])
		}
		if labels["service"] != "svc" || labels["instance"] != "10.0.0.1" || labels["env"] != "test" {
			t.Errorf("series %v missing base labels: %v", labels["__name__"], labels)
		}
		if !ts.Sample.Time.Equal(now) {
			t.Errorf("expected sample time %v, got %v", now, ts.Sample.Time)
		}
	}
	for _, want := range []string{
		"callstats_calls_total",
		"callstats_call_errors_total",
		"callstats_invalid_args_total",
		"callstats_param_supplied_total",
	} {
		if !names[want] {
			t.Errorf("missing series %q, got %v", want, names)
		}
	}
}

func TestStartStop_PushesPeriodically(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rw, err := NewRemoteWriter(RemoteWriteConfig{
		URL:      srv.URL,
		Interval: 10 * time.Millisecond,
		Registry: testRegistry(t),
	})
	if err != nil {
		t.Fatalf("NewRemoteWriter: %v", err)
	}

	if err := rw.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := rw.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for requests.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	rw.Stop()

	// At least one tick push plus Stop's final push.
	if requests.Load() < 2 {
		t.Errorf("expected periodic and final pushes, got %d", requests.Load())
	}

	// Stop is idempotent.
	rw.Stop()
}
