package proxy

import (
	"net/http"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
)

// Config configures the proxy server.
type Config struct {
	// MeasurementID and APISecret are the GA4 Measurement Protocol
	// credentials. Forwarding fails until both are set.
	MeasurementID string
	APISecret     string

	// CollectURL overrides the GA4 collection endpoint. Default is the
	// public Measurement Protocol endpoint; tests point it elsewhere.
	CollectURL string

	// BearerSecret enables JWT validation on /track when non-empty.
	BearerSecret []byte

	// Timeout bounds the upstream forward. Default: 5s.
	Timeout time.Duration

	// HTTPClient is the upstream client. If nil, a default client is used.
	HTTPClient *http.Client

	// Logger receives request diagnostics. Default: no-op.
	Logger *zap.Logger
}

// defaultCollectURL is the public GA4 Measurement Protocol endpoint.
const defaultCollectURL = "https://www.google-analytics.com/mp/collect"

// ConfigFromEnv loads credentials from GA4_MEASUREMENT_ID, GA4_API_SECRET,
// and PROXY_BEARER_SECRET.
func ConfigFromEnv() Config {
	cfg := Config{
		MeasurementID: os.Getenv("GA4_MEASUREMENT_ID"),
		APISecret:     os.Getenv("GA4_API_SECRET"),
	}
	if secret := os.Getenv("PROXY_BEARER_SECRET"); secret != "" {
		cfg.BearerSecret = []byte(secret)
	}
	return cfg
}

// configured reports whether both GA4 credentials are present.
func (c Config) configured() bool {
	return c.MeasurementID != "" && c.APISecret != ""
}

// collectURL returns the full upstream URL with credentials attached.
func (c Config) collectURL() string {
	base := c.CollectURL
	if base == "" {
		base = defaultCollectURL
	}
	q := url.Values{}
	q.Set("measurement_id", c.MeasurementID)
	q.Set("api_secret", c.APISecret)
	return base + "?" + q.Encode()
}
