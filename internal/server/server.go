// Package server provides the HTTP boundary: health, outbound call
// origination, the voice webhook state machine, and recording lifecycle.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/voicebridge/internal/config"
	"github.com/raphaelgruber/voicebridge/internal/llm"
	"github.com/raphaelgruber/voicebridge/internal/metrics"
	"github.com/raphaelgruber/voicebridge/internal/realtime"
	"github.com/raphaelgruber/voicebridge/internal/session"
	"github.com/raphaelgruber/voicebridge/internal/twilio"
)

// Fixed utterances. These are part of the caller-facing contract and are
// asserted on by tests; change them deliberately.
const (
	GreetingUtterance = "Hello! Thank you for calling. How can I assist you today?"
	RepromptUtterance = "I didn't catch that. Could you please repeat?"
	FallbackUtterance = "I apologize, but I'm having trouble processing your request right now. Please try again."
)

// Server holds the handler dependencies. Everything is injected; there is no
// package-level state.
type Server struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *session.Store
	model    llm.Responder
	calls    twilio.CallCreator
	bridge   *realtime.Bridge
	metrics  *metrics.Collector
	upgrader websocket.Upgrader
}

// New creates the HTTP boundary. bridge may be nil when no realtime
// credentials are configured; the media-stream endpoint then responds 503.
func New(cfg config.Config, logger *slog.Logger, store *session.Store, model llm.Responder, calls twilio.CallCreator, bridge *realtime.Bridge, collector *metrics.Collector) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		model:   model,
		calls:   calls,
		bridge:  bridge,
		metrics: collector,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Media streams come from the telephony provider, not browsers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the routed handler wrapped in the logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("POST /make-call", s.handleMakeCall)
	mux.HandleFunc("/voice-handler", s.handleVoice)
	mux.HandleFunc("/outgoing-call", s.handleOutgoingCall)
	mux.HandleFunc("POST /recording-status", s.handleRecordingStatus)
	mux.HandleFunc("GET /media-stream", s.handleMediaStream)
	mux.HandleFunc("GET /stats", s.handleStats)

	return LoggingMiddleware(s.logger)(mux)
}

// Close drops all conversation sessions. Called on shutdown.
func (s *Server) Close() {
	s.store.Clear()
	s.logger.Info("all conversation sessions cleared")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) writeTwiML(w http.ResponseWriter, doc []byte) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	if _, err := w.Write(doc); err != nil {
		s.logger.Error("failed to write twiml response", "error", err)
	}
}
