package proxy

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server is the analytics forwarding proxy.
type Server struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
	mux        *http.ServeMux
}

// NewServer creates a proxy server from config, applying defaults.
func NewServer(cfg Config) *Server {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	s := &Server{
		cfg:        cfg,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}

	track := s.handleTrack
	if len(cfg.BearerSecret) > 0 {
		track = s.requireBearer(track)
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /{$}", s.handleHealth)
	s.mux.HandleFunc("GET /debug", s.handleDebug)
	s.mux.HandleFunc("POST /track", track)
	return s
}

// Handler returns the HTTP handler for mounting.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// trackPayload is the wire shape analytics clients send.
type trackPayload struct {
	ClientID  string         `json:"client_id"`
	EventName string         `json:"event_name"`
	Params    map[string]any `json:"params"`
}

// ga4Payload is the Measurement Protocol shape.
type ga4Payload struct {
	ClientID string     `json:"client_id"`
	Events   []ga4Event `json:"events"`
}

type ga4Event struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "analytics proxy",
	})
}

// handleDebug reports configuration status. Credentials are reduced to a
// short preview so the endpoint can be left reachable.
func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	preview := ""
	if len(s.cfg.MeasurementID) > 5 {
		preview = s.cfg.MeasurementID[:5] + "..."
	} else {
		preview = s.cfg.MeasurementID
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"measurement_id_configured": s.cfg.MeasurementID != "",
		"api_secret_configured":     s.cfg.APISecret != "",
		"auth_required":             len(s.cfg.BearerSecret) > 0,
		"measurement_id_preview":    preview,
	})
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	var payload trackPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if payload.EventName == "" {
		s.writeError(w, http.StatusBadRequest, "missing or empty event_name")
		return
	}
	if payload.ClientID == "" {
		s.writeError(w, http.StatusBadRequest, "missing or empty client_id")
		return
	}
	if !s.cfg.configured() {
		s.writeError(w, http.StatusInternalServerError, "server credentials not configured")
		return
	}

	if err := s.forward(r, payload); err != nil {
		s.logger.Warn("failed to forward event",
			zap.String("event", payload.EventName),
			zap.Error(err),
		)
		s.writeError(w, http.StatusBadGateway, "failed to forward event")
		return
	}

	s.logger.Debug("event forwarded", zap.String("event", payload.EventName))
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// forward posts the event to the Measurement Protocol endpoint, which
// acknowledges with 204.
func (s *Server) forward(r *http.Request, payload trackPayload) error {
	body, err := json.Marshal(ga4Payload{
		ClientID: payload.ClientID,
		Events:   []ga4Event{{Name: payload.EventName, Params: payload.Params}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, s.cfg.collectURL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return &upstreamError{status: resp.StatusCode}
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": msg,
	})
}
