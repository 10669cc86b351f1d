package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combinepulse/internal/config"
	"combinepulse/internal/dashboard"
	"combinepulse/internal/dataset"
	"combinepulse/pkg/contracts/domain"
	"combinepulse/pkg/contracts/events"
)

const waitFor = 2 * time.Second

// mockConnection feeds reads from a channel and records writes
type mockConnection struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}

	mu        sync.Mutex
	closeOnce sync.Once
	sawClose  bool
	readLimit int64
}

func newMockConnection() *mockConnection {
	return &mockConnection{
		in:     make(chan []byte, 8),
		out:    make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (m *mockConnection) WriteMessage(messageType int, data []byte) error {
	select {
	case <-m.closed:
		return errors.New("connection closed")
	default:
	}
	switch messageType {
	case websocket.TextMessage:
		m.out <- data
	case websocket.CloseMessage:
		m.mu.Lock()
		m.sawClose = true
		m.mu.Unlock()
	}
	return nil
}

func (m *mockConnection) ReadMessage() (int, []byte, error) {
	select {
	case data, ok := <-m.in:
		if !ok {
			return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
		}
		return websocket.TextMessage, data, nil
	case <-m.closed:
		return 0, nil, errors.New("connection closed")
	}
}

func (m *mockConnection) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

func (m *mockConnection) SetReadDeadline(time.Time) error  { return nil }
func (m *mockConnection) SetWriteDeadline(time.Time) error { return nil }
func (m *mockConnection) SetPongHandler(func(string) error) {}
func (m *mockConnection) RemoteAddr() string                { return "127.0.0.1:9000" }

func (m *mockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	m.readLimit = limit
	m.mu.Unlock()
}

func (m *mockConnection) send(t *testing.T, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	m.in <- data
}

// next returns the next text message written to the client
func (m *mockConnection) next(t *testing.T) events.WebSocketMessage {
	t.Helper()
	select {
	case data := <-m.out:
		var msg events.WebSocketMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(waitFor):
		t.Fatal("no message written")
		return events.WebSocketMessage{}
	}
}

func fakeRenderer() Renderer {
	return RendererFunc(func(ctx context.Context, state dashboard.State) (*dashboard.View, error) {
		switch {
		case state.Round == 7:
			return nil, &domain.EmptyAggregateError{Position: state.Position, Test: state.Test, Round: 7}
		case !state.Position.HasTest(state.Test):
			return nil, &domain.InvalidSelectionError{Field: "test", Value: string(state.Test), Reason: "not tracked"}
		case state.Position == domain.PositionOLB:
			return nil, dataset.ErrNotLoaded
		case state.Position == domain.PositionDT:
			return nil, errors.New("boom")
		}
		return &dashboard.View{Title: string(state.Position) + " " + string(state.Test), State: state}, nil
	})
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(fakeRenderer(), config.WebSocketConfig{MaxMessageBytes: 2048}, nil, logger)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func connect(t *testing.T, hub *Hub) (*Client, *mockConnection) {
	t.Helper()
	conn := newMockConnection()
	client := Serve(hub, conn, "trace-1")

	msg := conn.next(t)
	require.Equal(t, events.MessageTypeConnected, msg.Type)
	assert.Equal(t, "trace-1", msg.TraceID)
	data := msg.Data.(map[string]interface{})
	assert.Equal(t, client.ID(), data["client_id"])
	return client, conn
}

func TestNewHubDefaults(t *testing.T) {
	hub := NewHub(fakeRenderer(), config.WebSocketConfig{PingPeriod: time.Minute, PongWait: 30 * time.Second}, nil, nil)
	assert.Equal(t, 30*time.Second, hub.cfg.PongWait)
	assert.Equal(t, 27*time.Second, hub.cfg.PingPeriod)
	assert.Equal(t, int64(defaultMaxMessageBytes), hub.cfg.MaxMessageBytes)
}

func TestClientRender(t *testing.T) {
	hub := newTestHub(t)
	_, conn := connect(t, hub)

	conn.mu.Lock()
	assert.Equal(t, int64(2048), conn.readLimit)
	conn.mu.Unlock()

	conn.send(t, events.ClientMessage{
		ID:    "req-1",
		Type:  events.MessageTypeRender,
		State: &events.RenderState{Position: "wr", Test: "forty", Round: 1, Value: 4.45},
	})

	msg := conn.next(t)
	require.Equal(t, events.MessageTypeView, msg.Type)
	assert.Equal(t, "req-1", msg.ID)
	view := msg.Data.(map[string]interface{})
	assert.Equal(t, "WR Forty", view["title"])
}

func TestClientRenderErrors(t *testing.T) {
	tests := []struct {
		name  string
		state *events.RenderState
		code  string
	}{
		{"missing state", nil, events.ErrorCodeBadMessage},
		{"unknown position", &events.RenderState{Position: "K", Test: "Forty", Round: 1}, events.ErrorCodeInvalidSelection},
		{"test not designated", &events.RenderState{Position: "QB", Test: "Cone", Round: 1}, events.ErrorCodeInvalidSelection},
		{"empty round", &events.RenderState{Position: "WR", Test: "Forty", Round: 7}, events.ErrorCodeInsufficientData},
		{"no dataset", &events.RenderState{Position: "OLB", Test: "Cone", Round: 1}, events.ErrorCodeUnavailable},
		{"unexpected", &events.RenderState{Position: "DT", Test: "Forty", Round: 1}, events.ErrorCodeInternal},
	}

	hub := newTestHub(t)
	_, conn := connect(t, hub)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn.send(t, events.ClientMessage{ID: tt.name, Type: events.MessageTypeRender, State: tt.state})

			msg := conn.next(t)
			require.Equal(t, events.MessageTypeError, msg.Type)
			assert.Equal(t, tt.name, msg.ID)
			data := msg.Data.(map[string]interface{})
			assert.Equal(t, tt.code, data["code"])
			assert.Equal(t, false, data["fatal"])
		})
	}

	// the session survives every error
	conn.send(t, events.ClientMessage{ID: "after", Type: events.MessageTypePing})
	assert.Equal(t, events.MessageTypePong, conn.next(t).Type)
}

func TestClientBadMessages(t *testing.T) {
	hub := newTestHub(t)
	_, conn := connect(t, hub)

	conn.in <- []byte("not json")
	msg := conn.next(t)
	require.Equal(t, events.MessageTypeError, msg.Type)
	assert.Equal(t, events.ErrorCodeBadMessage, msg.Data.(map[string]interface{})["code"])

	conn.send(t, events.ClientMessage{ID: "x", Type: "subscribe"})
	msg = conn.next(t)
	require.Equal(t, events.MessageTypeError, msg.Type)
	assert.Equal(t, "x", msg.ID)
}

func TestBroadcastDatasetReloaded(t *testing.T) {
	hub := newTestHub(t)
	_, first := connect(t, hub)
	_, second := connect(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, waitFor, 10*time.Millisecond)

	loadedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	hub.BroadcastDatasetReloaded(context.Background(), dataset.Info{
		Source:      "combine.csv",
		Fingerprint: "abc123",
		Drafted:     1564,
		LoadedAt:    loadedAt,
	})

	for _, conn := range []*mockConnection{first, second} {
		msg := conn.next(t)
		require.Equal(t, events.MessageTypeDatasetReloaded, msg.Type)
		data := msg.Data.(map[string]interface{})
		assert.Equal(t, "abc123", data["fingerprint"])
		assert.Equal(t, float64(1564), data["drafted"])
	}
}

func TestClientDisconnect(t *testing.T) {
	hub := newTestHub(t)
	_, conn := connect(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, waitFor, 10*time.Millisecond)

	close(conn.in)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, waitFor, 10*time.Millisecond)
}

func TestHubStopClosesSessions(t *testing.T) {
	hub := newTestHub(t)
	client, conn := connect(t, hub)

	hub.Stop()

	assert.Eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return conn.sawClose
	}, waitFor, 10*time.Millisecond)
	assert.False(t, client.enqueue([]byte("late")))

	// registering after stop closes the client immediately
	late := NewClientWithConnection(hub, newMockConnection(), "")
	hub.Register(late)
	assert.False(t, late.enqueue([]byte("late")))
	assert.Equal(t, late.ID(), late.traceID)
}
