// Package proxy implements the analytics forwarding server. It accepts
// events from analytics clients on POST /track, validates them, and forwards
// them to the Google Analytics 4 Measurement Protocol endpoint, keeping the
// GA4 credentials off the clients. GET / answers health probes and
// GET /debug reports configuration status without leaking credentials.
//
// When a bearer secret is configured, /track additionally requires a valid
// HS256 JWT.
package proxy
