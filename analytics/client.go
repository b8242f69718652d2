package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientConfig configures the analytics client.
type ClientConfig struct {
	// ProxyURL is the base URL of the analytics proxy. Required.
	ProxyURL string

	// ClientID identifies this installation across events. A random UUID is
	// generated when empty.
	ClientID string

	// Timeout is the per-request timeout. Default: 2s.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after a transient failure.
	// Client errors (4xx) are never retried. Default: 0.
	MaxRetries int

	// Enabled overrides the automatic opt-out detection. When nil, telemetry
	// is disabled if DO_NOT_TRACK or CI is set.
	Enabled *bool

	// HTTPClient is the HTTP client to use. If nil, a default client is used.
	HTTPClient *http.Client

	// Logger receives debug-level delivery diagnostics. Default: no-op.
	Logger *zap.Logger
}

// Client sends analytics events to a proxy's /track endpoint.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: TrackEvent honors cancellation between retry attempts.
// - Errors: delivery failures are returned, never logged-and-swallowed.
type Client struct {
	proxyURL   string
	clientID   string
	maxRetries int
	enabled    bool
	httpClient *http.Client
	backoff    backoff
	logger     *zap.Logger
}

// NewClient creates a client from config, applying defaults.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.ProxyURL) == "" {
		return nil, ErrMissingProxyURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	enabled := !telemetryDisabled()
	if cfg.Enabled != nil {
		enabled = *cfg.Enabled
	}

	c := &Client{
		proxyURL:   strings.TrimRight(cfg.ProxyURL, "/"),
		clientID:   cfg.ClientID,
		maxRetries: cfg.MaxRetries,
		enabled:    enabled,
		httpClient: httpClient,
		backoff:    defaultBackoff(),
		logger:     cfg.Logger,
	}

	c.logger.Debug("analytics client initialized",
		zap.Bool("enabled", c.enabled),
		zap.String("client_id", c.clientID),
		zap.String("proxy_url", c.proxyURL),
	)
	return c, nil
}

// telemetryDisabled reports whether the environment opts out of telemetry.
func telemetryDisabled() bool {
	for _, key := range []string{"DO_NOT_TRACK", "CI"} {
		switch strings.ToLower(os.Getenv(key)) {
		case "1", "true":
			return true
		}
	}
	return false
}

// Enabled reports whether events will actually be sent.
func (c *Client) Enabled() bool {
	return c.enabled
}

// ClientID returns the id attached to every event.
func (c *Client) ClientID() string {
	return c.clientID
}

// Event pairs an event name with its parameters.
type Event struct {
	Name   string
	Params map[string]any
}

// payload is the wire shape the proxy expects.
type payload struct {
	ClientID  string         `json:"client_id"`
	EventName string         `json:"event_name"`
	Params    map[string]any `json:"params"`
}

// TrackEvent sends one event. Runtime information (Go version, OS, arch) is
// merged into the parameters. Returns ErrDisabled without sending when
// telemetry is off.
func (c *Client) TrackEvent(ctx context.Context, name string, params map[string]any) error {
	if name == "" {
		return ErrMissingEventName
	}
	if !c.enabled {
		c.logger.Debug("telemetry disabled, skipping event", zap.String("event", name))
		return ErrDisabled
	}

	merged := make(map[string]any, len(params)+3)
	for k, v := range params {
		merged[k] = v
	}
	merged["go_version"] = runtime.Version()
	merged["os"] = runtime.GOOS
	merged["platform"] = runtime.GOOS + "/" + runtime.GOARCH

	body, err := json.Marshal(payload{
		ClientID:  c.clientID,
		EventName: name,
		Params:    merged,
	})
	if err != nil {
		return fmt.Errorf("analytics: encode event %q: %w", name, err)
	}

	return c.send(ctx, name, body)
}

// TrackBatch sends events in sequence, each tracked independently. The
// returned map holds the per-event outcome keyed by event name.
func (c *Client) TrackBatch(ctx context.Context, events []Event) map[string]error {
	results := make(map[string]error, len(events))
	for _, ev := range events {
		results[ev.Name] = c.TrackEvent(ctx, ev.Name, ev.Params)
	}
	return results
}

// send posts the body to /track, retrying transient failures.
func (c *Client) send(ctx context.Context, event string, body []byte) error {
	url := c.proxyURL + "/track"

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("analytics: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("analytics: send event %q: %w", event, err)
			c.logger.Debug("event delivery failed",
				zap.String("event", event),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		} else {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				c.logger.Debug("event sent", zap.String("event", event))
				return nil
			}
			lastErr = fmt.Errorf("analytics: event %q: proxy returned status %d", event, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return fmt.Errorf("%w: %s", ErrRejected, lastErr)
			}
			c.logger.Debug("event not accepted",
				zap.String("event", event),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt),
			)
		}

		if attempt > c.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff.delay(attempt)):
		}
	}
	return lastErr
}
