package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"combinepulse/internal/dashboard"
	"combinepulse/internal/dataset"
	"combinepulse/internal/infrastructure"
	"combinepulse/pkg/contracts/domain"
	"combinepulse/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed for one render requested over the session
	renderTimeout = 15 * time.Second

	sendBuffer = 64
)

// Client is a middleman between one WebSocket connection and the hub
type Client struct {
	hub  *Hub
	conn Connection
	ctx  context.Context

	// Buffered channel of outbound messages
	send   chan []byte
	sendMu sync.Mutex
	closed bool

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger *slog.Logger

	messagesSent     int64
	messagesReceived int64
}

// NewClient creates a client for an upgraded connection
func NewClient(hub *Hub, conn *websocket.Conn, traceID string) *Client {
	return NewClientWithConnection(hub, NewConnectionWrapper(conn), traceID)
}

// NewClientWithConnection creates a client over any Connection
func NewClientWithConnection(hub *Hub, conn Connection, traceID string) *Client {
	id := uuid.New().String()
	if traceID == "" {
		traceID = id
	}

	return &Client{
		hub:         hub,
		conn:        conn,
		ctx:         infrastructure.WithTraceID(context.Background(), traceID),
		send:        make(chan []byte, sendBuffer),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger: hub.logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id),
		),
	}
}

// ID returns the session identifier sent in the connected message
func (c *Client) ID() string {
	return c.id
}

// enqueue queues msg without blocking. It reports false when the client is
// closed or its buffer is full.
func (c *Client) enqueue(msg []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// reply queues a message for this client only
func (c *Client) reply(msg events.WebSocketMessage) {
	msg.TraceID = c.traceID
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.ErrorContext(c.ctx, "failed to marshal reply",
			slog.String("type", string(msg.Type)),
			slog.String("error", err.Error()))
		return
	}
	if !c.enqueue(data) {
		c.logger.WarnContext(c.ctx, "reply dropped", slog.String("type", string(msg.Type)))
	}
}

func (c *Client) replyError(id string, data events.ErrorData) {
	c.reply(events.NewMessage(events.MessageTypeError, id, data))
}

// ReadPump reads client requests until the connection fails, answering each
// one in order
func (c *Client) ReadPump() {
	defer func() {
		c.logger.InfoContext(c.ctx, "websocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("messages_received", c.messagesReceived))
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	pongWait := c.hub.cfg.PongWait
	c.conn.SetReadLimit(c.hub.cfg.MaxMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.ErrorContext(c.ctx, "unexpected websocket close",
					slog.String("error", err.Error()))
			}
			return
		}
		c.messagesReceived++
		c.handle(message)
	}
}

func (c *Client) handle(raw []byte) {
	var msg events.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.replyError("", events.ErrorData{Code: events.ErrorCodeBadMessage, Message: "message is not valid JSON"})
		return
	}

	switch msg.Type {
	case events.MessageTypePing:
		c.reply(events.NewMessage(events.MessageTypePong, msg.ID, nil))
	case events.MessageTypeRender:
		c.render(msg)
	default:
		c.replyError(msg.ID, events.ErrorData{
			Code:    events.ErrorCodeBadMessage,
			Message: "unsupported message type",
			Details: msg.Type,
		})
	}
}

func (c *Client) render(msg events.ClientMessage) {
	if msg.State == nil {
		c.replyError(msg.ID, events.ErrorData{Code: events.ErrorCodeBadMessage, Message: "render needs a state"})
		return
	}

	state, err := parseState(*msg.State)
	if err != nil {
		c.replyError(msg.ID, errorData(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, renderTimeout)
	defer cancel()

	view, err := c.hub.renderer.Render(ctx, state)
	if err != nil {
		c.logger.DebugContext(ctx, "render failed",
			slog.String("state", state.Key()),
			slog.String("error", err.Error()))
		c.replyError(msg.ID, errorData(err))
		return
	}
	c.reply(events.NewMessage(events.MessageTypeView, msg.ID, view))
}

func parseState(rs events.RenderState) (dashboard.State, error) {
	pos, err := domain.ParsePosition(rs.Position)
	if err != nil {
		return dashboard.State{}, err
	}
	test, err := domain.ParseTest(rs.Test)
	if err != nil {
		return dashboard.State{}, err
	}
	return dashboard.State{Position: pos, Test: test, Round: rs.Round, Candidate: rs.Value}, nil
}

// errorData describes err for the client. Insufficient data and invalid
// selections leave the session usable.
func errorData(err error) events.ErrorData {
	var colErr *dataset.MissingColumnError
	switch {
	case errors.Is(err, domain.ErrEmptyAggregate):
		return events.ErrorData{Code: events.ErrorCodeInsufficientData, Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidSelection):
		return events.ErrorData{Code: events.ErrorCodeInvalidSelection, Message: err.Error()}
	case errors.Is(err, dataset.ErrNotLoaded), errors.As(err, &colErr):
		return events.ErrorData{Code: events.ErrorCodeUnavailable, Message: err.Error()}
	default:
		return events.ErrorData{Code: events.ErrorCodeInternal, Message: "the dashboard could not be rendered"}
	}
}

// WritePump writes queued messages and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.hub.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.DebugContext(c.ctx, "websocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent))
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.ctx, "error writing websocket message",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent++

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.ctx, "failed to send ping",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

// Serve registers a client for conn and starts its pumps
func Serve(hub *Hub, conn Connection, traceID string) *Client {
	client := NewClientWithConnection(hub, conn, traceID)
	hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
	return client
}
