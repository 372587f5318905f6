package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewBridgeRequiresAPIKey(t *testing.T) {
	_, err := NewBridge(Config{Model: "m"}, testLogger())
	assert.Error(t, err)
}

// fakeRealtimeServer upgrades the connection, records the initial
// session.update, and echoes every audio append back as a response delta.
func fakeRealtimeServer(t *testing.T, sessionUpdates chan<- map[string]any) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "realtime=v1", r.Header.Get("OpenAI-Beta"))
		assert.Equal(t, "test-model", r.URL.Query().Get("model"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for {
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			switch msg["type"] {
			case "session.update":
				sessionUpdates <- msg
			case "input_audio_buffer.append":
				out := map[string]any{
					"type":  "response.audio.delta",
					"delta": msg["audio"],
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			}
		}
	}))
}

func TestBridgeRelaysAudio(t *testing.T) {
	sessionUpdates := make(chan map[string]any, 1)
	realtimeSrv := fakeRealtimeServer(t, sessionUpdates)
	defer realtimeSrv.Close()

	// Provider side: the handler hands the server-side conn to the bridge.
	done := make(chan struct{})
	providerConns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	providerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		providerConns <- conn
		<-done
	}))
	defer providerSrv.Close()
	defer close(done)

	bridge, err := NewBridge(Config{
		APIKey:       "test-key",
		Model:        "test-model",
		Voice:        "echo",
		Instructions: "be nice",
		Endpoint:     "ws" + strings.TrimPrefix(realtimeSrv.URL, "http"),
	}, testLogger())
	require.NoError(t, err)

	// Caller side of the media stream.
	caller, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(providerSrv.URL, "http"), nil)
	require.NoError(t, err)
	defer caller.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	providerConn := <-providerConns
	bridgeErr := make(chan error, 1)
	go func() { bridgeErr <- bridge.Run(ctx, providerConn) }()

	// The bridge must configure the realtime session first.
	select {
	case update := <-sessionUpdates:
		session, ok := update["session"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "g711_ulaw", session["input_audio_format"])
		assert.Equal(t, "echo", session["voice"])
		assert.Equal(t, "be nice", session["instructions"])
	case <-time.After(2 * time.Second):
		t.Fatal("bridge never sent session.update")
	}

	require.NoError(t, caller.WriteJSON(map[string]any{
		"event": "start",
		"start": map[string]string{"streamSid": "MZ123"},
	}))
	require.NoError(t, caller.WriteJSON(map[string]any{
		"event": "media",
		"media": map[string]string{"payload": "dGVzdC1hdWRpbw=="},
	}))

	// The echoed delta should come back as a provider media frame.
	caller.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := caller.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, "media", frame["event"])
	assert.Equal(t, "MZ123", frame["streamSid"])
	media, ok := frame["media"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "dGVzdC1hdWRpbw==", media["payload"])

	// A stop frame ends the provider pump cleanly.
	require.NoError(t, caller.WriteJSON(map[string]any{"event": "stop"}))
	select {
	case err := <-bridgeErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bridge did not stop")
	}
}

func TestProviderEventParsing(t *testing.T) {
	raw := `{"event":"start","start":{"streamSid":"MZ9"}}`
	var evt providerEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &evt))
	assert.Equal(t, "start", evt.Event)
	require.NotNil(t, evt.Start)
	assert.Equal(t, "MZ9", evt.Start.StreamSID)
}

func TestRealtimeEventParsing(t *testing.T) {
	raw := `{"type":"session.created","session":{"id":"sess_1"}}`
	var evt realtimeEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &evt))
	assert.Equal(t, "session.created", evt.Type)
	require.NotNil(t, evt.Session)
	assert.Equal(t, "sess_1", evt.Session.ID)
}
