package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/raphaelgruber/voicebridge/internal/llm"
	"github.com/raphaelgruber/voicebridge/internal/metrics"
	"github.com/raphaelgruber/voicebridge/internal/models"
	"github.com/raphaelgruber/voicebridge/internal/twilio"
)

// handleHealth is the liveness endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "AI Voice Assistant is running!",
	})
}

type makeCallRequest struct {
	ToPhoneNumber string `json:"to_phone_number"`
}

// handleMakeCall originates an outbound call. Provider failures become a
// structured {error, status: failed} payload; this handler never panics the
// process over a bad number or a provider outage.
func (s *Server) handleMakeCall(w http.ResponseWriter, r *http.Request) {
	var req makeCallRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"status": "failed",
		})
		return
	}

	if req.ToPhoneNumber == "" {
		s.writeJSON(w, http.StatusOK, map[string]string{
			"error": "Phone number is required",
		})
		return
	}

	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	start := time.Now()
	call, err := s.calls.CreateCall(r.Context(), twilio.CreateCallParams{
		To:                      req.ToPhoneNumber,
		From:                    s.cfg.TwilioPhoneNumber,
		URL:                     base + "/voice-handler",
		Record:                  true,
		RecordingStatusCallback: base + "/recording-status",
	})
	s.metrics.Record(metrics.OpCreateCall, time.Since(start), err != nil)

	if err != nil {
		s.logger.Error("failed to initiate call", "to", req.ToPhoneNumber, "error", err)
		s.writeJSON(w, http.StatusOK, map[string]string{
			"error":  err.Error(),
			"status": "failed",
		})
		return
	}

	s.logger.Info("call initiated", "call_sid", call.SID, "to", req.ToPhoneNumber)
	s.writeJSON(w, http.StatusOK, map[string]string{
		"call_sid": call.SID,
		"status":   "success",
	})
}

// handleVoice is the conversation state machine. First contact for a call
// SID creates the session and greets without consulting the model; after
// that, recognized speech drives a model turn and silence a re-prompt.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { s.metrics.Record(metrics.OpWebhook, time.Since(start), false) }()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	callSID := r.FormValue("CallSid")
	if callSID == "" {
		http.Error(w, "missing CallSid", http.StatusBadRequest)
		return
	}
	speech := r.FormValue("SpeechResult")

	var utterance string
	_, created := s.store.GetOrCreate(callSID)
	switch {
	case created:
		s.logger.Info("new conversation session", "call_sid", callSID)
		utterance = GreetingUtterance

	case speech != "":
		s.logger.Debug("caller speech", "call_sid", callSID, "speech", speech)
		s.store.Append(callSID, models.RoleUser, speech)
		utterance = s.generateReply(r, callSID)
		s.store.Append(callSID, models.RoleAssistant, utterance)

	default:
		utterance = RepromptUtterance
	}

	doc, err := twilio.GatherSpeech(utterance, "/voice-handler")
	if err != nil {
		s.logger.Error("failed to render twiml", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.writeTwiML(w, doc)
}

// generateReply runs one inference turn over the full transcript. Any
// failure is logged with its kind and collapsed into the fixed fallback
// utterance; the call keeps going either way.
func (s *Server) generateReply(r *http.Request, callSID string) string {
	transcript, ok := s.store.Transcript(callSID)
	if !ok {
		return FallbackUtterance
	}

	start := time.Now()
	reply, err := s.model.Reply(r.Context(), transcript)
	s.metrics.Record(metrics.OpLLMReply, time.Since(start), err != nil)

	if err != nil {
		s.logger.Error("inference failed",
			"call_sid", callSID,
			"kind", llm.Kind(err),
			"error", err,
		)
		return FallbackUtterance
	}
	return reply
}

// handleOutgoingCall returns the media-stream handoff TwiML for calls
// bridged to the realtime API.
func (s *Server) handleOutgoingCall(w http.ResponseWriter, r *http.Request) {
	doc, err := twilio.ConnectStream(r.Host)
	if err != nil {
		s.logger.Error("failed to render twiml", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.writeTwiML(w, doc)
}

// handleRecordingStatus consumes recording lifecycle events. Only a
// completed recording changes state: it deletes the call's session. The
// acknowledgement is unconditional; recording failures are not retried or
// escalated here.
func (s *Server) handleRecordingStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { s.metrics.Record(metrics.OpWebhook, time.Since(start), false) }()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	status := r.FormValue("RecordingStatus")
	callSID := r.FormValue("CallSid")
	s.logger.Info("recording status update",
		"call_sid", callSID,
		"recording_sid", r.FormValue("RecordingSid"),
		"status", status,
	)

	if status == "completed" {
		s.logger.Info("recording completed",
			"call_sid", callSID,
			"recording_url", r.FormValue("RecordingUrl"),
			"duration_seconds", r.FormValue("RecordingDuration"),
		)
		s.store.Delete(callSID)
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

// handleMediaStream upgrades to a websocket and hands the connection to the
// realtime bridge.
func (s *Server) handleMediaStream(w http.ResponseWriter, r *http.Request) {
	if s.bridge == nil {
		http.Error(w, "media streaming not configured", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Info("media stream client connected")
	if err := s.bridge.Run(r.Context(), conn); err != nil {
		s.logger.Warn("media bridge ended", "error", err)
	}
}

// handleStats serves the in-memory metrics snapshot.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.metrics.Snapshot(s.store.Len()))
}
