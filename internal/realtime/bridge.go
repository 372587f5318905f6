// Package realtime bridges a Twilio media-stream websocket to a realtime
// speech-to-speech inference API. Audio frames pass through opaquely in both
// directions; the bridge only inspects event envelopes.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// DefaultEndpoint is the realtime API websocket endpoint.
const DefaultEndpoint = "wss://api.openai.com/v1/realtime"

// loggedEventTypes are realtime events worth surfacing in debug logs.
var loggedEventTypes = map[string]bool{
	"response.content.done":              true,
	"rate_limits.updated":                true,
	"response.done":                      true,
	"input_audio_buffer.committed":       true,
	"input_audio_buffer.speech_stopped":  true,
	"input_audio_buffer.speech_started":  true,
	"session.created":                    true,
}

// Bridge connects one provider media stream to one realtime session.
type Bridge struct {
	apiKey       string
	model        string
	voice        string
	instructions string
	endpoint     string
	logger       *slog.Logger
}

// Config configures a Bridge.
type Config struct {
	APIKey       string
	Model        string
	Voice        string
	Instructions string
	Endpoint     string // override for tests
}

// NewBridge creates a media bridge.
func NewBridge(cfg Config, logger *slog.Logger) (*Bridge, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("realtime API key is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Bridge{
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		voice:        cfg.Voice,
		instructions: cfg.Instructions,
		endpoint:     endpoint,
		logger:       logger,
	}, nil
}

// providerEvent is the envelope of a Twilio media-stream frame.
type providerEvent struct {
	Event string `json:"event"`
	Start *struct {
		StreamSID string `json:"streamSid"`
	} `json:"start,omitempty"`
	Media *struct {
		Payload string `json:"payload"`
	} `json:"media,omitempty"`
}

// realtimeEvent is the envelope of a realtime API message.
type realtimeEvent struct {
	Type    string `json:"type"`
	Delta   string `json:"delta,omitempty"`
	Session *struct {
		ID string `json:"id"`
	} `json:"session,omitempty"`
}

// Run dials the realtime API, configures the session, and pumps frames both
// ways until either side closes. The provider connection is owned by the
// caller; Run never closes it.
func (b *Bridge) Run(ctx context.Context, provider *websocket.Conn) error {
	header := http.Header{
		"Authorization": {"Bearer " + b.apiKey},
		"OpenAI-Beta":   {"realtime=v1"},
	}
	aiConn, resp, err := websocket.DefaultDialer.DialContext(ctx, b.endpoint+"?model="+b.model, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial realtime API: %w (status %s)", err, resp.Status)
		}
		return fmt.Errorf("dial realtime API: %w", err)
	}
	defer aiConn.Close()

	if err := b.sendSessionUpdate(aiConn); err != nil {
		return err
	}

	st := &bridgeState{ai: aiConn}

	errs := make(chan error, 2)
	go func() { errs <- b.pumpProviderToAI(provider, st) }()
	go func() { errs <- b.pumpAIToProvider(provider, st) }()

	select {
	case err := <-errs:
		// Closing the AI conn unblocks the other pump.
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// bridgeState is shared between the two pump goroutines. The gorilla
// websocket allows one concurrent writer, and both pumps write to the AI
// connection, so writes go through writeAI.
type bridgeState struct {
	mu        sync.Mutex
	ai        *websocket.Conn
	streamSID string
}

func (s *bridgeState) writeAI(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ai.WriteJSON(v)
}

func (s *bridgeState) setStreamSID(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streamSID = sid
}

func (s *bridgeState) getStreamSID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamSID
}

func (b *Bridge) sendSessionUpdate(conn *websocket.Conn) error {
	update := map[string]any{
		"type": "session.update",
		"session": map[string]any{
			"input_audio_format":  "g711_ulaw",
			"output_audio_format": "g711_ulaw",
			"voice":               b.voice,
			"instructions":        b.instructions,
			"modalities":          []string{"text", "audio"},
			"temperature":         0.2,
		},
	}
	if err := conn.WriteJSON(update); err != nil {
		return fmt.Errorf("configure realtime session: %w", err)
	}
	b.logger.Debug("realtime session configured", "model", b.model, "voice", b.voice)
	return nil
}

// pumpProviderToAI forwards caller audio into the realtime input buffer.
func (b *Bridge) pumpProviderToAI(provider *websocket.Conn, st *bridgeState) error {
	for {
		_, raw, err := provider.ReadMessage()
		if err != nil {
			return fmt.Errorf("read provider frame: %w", err)
		}

		var evt providerEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			b.logger.Warn("unparseable provider frame", "error", err)
			continue
		}

		switch evt.Event {
		case "start":
			if evt.Start != nil {
				st.setStreamSID(evt.Start.StreamSID)
				b.logger.Info("media stream started", "stream_sid", evt.Start.StreamSID)
			}
		case "media":
			if evt.Media == nil {
				continue
			}
			frame := map[string]any{
				"type":  "input_audio_buffer.append",
				"audio": evt.Media.Payload,
			}
			if err := st.writeAI(frame); err != nil {
				return fmt.Errorf("forward audio: %w", err)
			}
		case "stop":
			return nil
		}
	}
}

// pumpAIToProvider forwards synthesized audio back to the caller and handles
// barge-in: when the caller starts speaking, the in-flight response is
// canceled and the provider's playback buffer cleared.
func (b *Bridge) pumpAIToProvider(provider *websocket.Conn, st *bridgeState) error {
	for {
		_, raw, err := st.ai.ReadMessage()
		if err != nil {
			return fmt.Errorf("read realtime frame: %w", err)
		}

		var evt realtimeEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			b.logger.Warn("unparseable realtime frame", "error", err)
			continue
		}

		if loggedEventTypes[evt.Type] {
			b.logger.Debug("realtime event", "type", evt.Type)
		}

		switch evt.Type {
		case "session.created":
			if evt.Session != nil {
				b.logger.Info("realtime session created", "session_id", evt.Session.ID)
			}

		case "response.audio.delta":
			if evt.Delta == "" {
				continue
			}
			frame := map[string]any{
				"event":     "media",
				"streamSid": st.getStreamSID(),
				"media":     map[string]string{"payload": evt.Delta},
			}
			if err := provider.WriteJSON(frame); err != nil {
				return fmt.Errorf("forward synthesized audio: %w", err)
			}

		case "input_audio_buffer.speech_started":
			b.logger.Debug("caller speech started, canceling response")
			clearFrame := map[string]any{
				"event":     "clear",
				"streamSid": st.getStreamSID(),
			}
			if err := provider.WriteJSON(clearFrame); err != nil {
				return fmt.Errorf("clear provider buffer: %w", err)
			}
			if err := st.writeAI(map[string]string{"type": "response.cancel"}); err != nil {
				return fmt.Errorf("cancel realtime response: %w", err)
			}
		}
	}
}
