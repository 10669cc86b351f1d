package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"combinepulse/internal/config"
	"combinepulse/internal/dashboard"
	"combinepulse/internal/dataset"
	"combinepulse/internal/infrastructure"
	"combinepulse/pkg/contracts"
	"combinepulse/pkg/contracts/events"
)

const (
	defaultPongWait        = 60 * time.Second
	defaultMaxMessageBytes = 4096
	broadcastBuffer        = 16
)

// Renderer computes a dashboard view for a selection
type Renderer interface {
	Render(ctx context.Context, state dashboard.State) (*dashboard.View, error)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(ctx context.Context, state dashboard.State) (*dashboard.View, error)

// Render calls f
func (f RendererFunc) Render(ctx context.Context, state dashboard.State) (*dashboard.View, error) {
	return f(ctx, state)
}

// Hub maintains the set of active sessions and broadcasts messages to them
type Hub struct {
	renderer Renderer
	cfg      config.WebSocketConfig
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger

	// Registered clients
	clients map[*Client]bool
	mu      sync.RWMutex

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	// Control
	quit     chan struct{}
	stopOnce sync.Once
	running  bool
}

// NewHub creates a hub rendering with renderer. Zero config values fall back
// to the defaults.
func NewHub(renderer Renderer, cfg config.WebSocketConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if metrics == nil {
		metrics = infrastructure.NewNoopBusinessMetrics()
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaultPongWait
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = (cfg.PongWait * 9) / 10
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = defaultMaxMessageBytes
	}

	return &Hub{
		renderer:   renderer,
		cfg:        cfg,
		metrics:    metrics,
		logger:     infrastructure.WithComponent(logger, "websocket.hub"),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
}

// Start starts the hub loop once
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop. It owns the client set and is the only place
// client send channels are closed.
func (h *Hub) Run() {
	ctx := context.Background()
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.close()
				h.metrics.WebSocketSessions.Add(ctx, -1)
			}
			h.mu.Unlock()
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.metrics.WebSocketSessions.Add(ctx, 1)

			h.logger.InfoContext(client.ctx, "client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			client.reply(events.NewMessage(events.MessageTypeConnected, "", events.ConnectedData{
				ClientID:   client.id,
				APIVersion: contracts.APIVersion,
			}))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				client.close()
			}
			count := len(h.clients)
			h.mu.Unlock()
			if !ok {
				continue
			}
			h.metrics.WebSocketSessions.Add(ctx, -1)

			h.logger.InfoContext(client.ctx, "client unregistered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.Duration("connection_duration", time.Since(client.connectedAt)))

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.enqueue(message) {
					continue
				}
				delete(h.clients, client)
				client.close()
				h.metrics.WebSocketSessions.Add(ctx, -1)
				h.logger.WarnContext(client.ctx, "client send buffer full, disconnecting",
					slog.String("client_id", client.id))
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Debug("broadcast sent",
				slog.Int("client_count", count),
				slog.Int("message_size", len(message)))
		}
	}
}

// Register adds a client. It does nothing once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		client.close()
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Broadcast sends msg to every session
func (h *Hub) Broadcast(ctx context.Context, msg events.WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal broadcast",
			slog.String("type", string(msg.Type)),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- data:
		h.metrics.WebSocketBroadcasts.Add(ctx, 1,
			metric.WithAttributes(attribute.String("type", string(msg.Type))))
	case <-h.quit:
	case <-ctx.Done():
		h.logger.WarnContext(ctx, "broadcast dropped", slog.String("type", string(msg.Type)))
	}
}

// BroadcastDatasetReloaded tells every session that a new dataset is served.
// Its signature matches the dashboard service reload listener.
func (h *Hub) BroadcastDatasetReloaded(ctx context.Context, info dataset.Info) {
	msg := events.NewMessage(events.MessageTypeDatasetReloaded, "", events.DatasetReloadedData{
		Source:      info.Source,
		Fingerprint: info.Fingerprint,
		Drafted:     info.Drafted,
		LoadedAt:    info.LoadedAt,
	})
	msg.TraceID = infrastructure.GetTraceID(ctx)
	h.Broadcast(ctx, msg)
}

// ClientCount returns the number of open sessions
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every session and ends the hub loop
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.quit)
	})
}
