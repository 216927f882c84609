package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"descstats/internal/infrastructure"
)

var errHubStopped = errors.New("websocket hub stopped")

// TypeConnection is the type of the greeting sent to every new subscriber
const TypeConnection = "connection"

// Message is the JSON envelope of every frame the hub sends
type Message struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	TraceID   string    `json:"trace_id,omitempty"`
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	running bool

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	logger   *slog.Logger
	clientsG metric.Int64UpDownCounter
	sent     metric.Int64Counter
	dropped  metric.Int64Counter
}

// NewHub creates a hub. A nil meter disables its metrics.
func NewHub(logger *slog.Logger, meter metric.Meter) (*Hub, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("websocket")
	}

	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}

	var err error
	if h.clientsG, err = meter.Int64UpDownCounter("descstats_ws_clients",
		metric.WithDescription("Connected WebSocket subscribers")); err != nil {
		return nil, err
	}
	if h.sent, err = meter.Int64Counter("descstats_ws_messages_sent",
		metric.WithDescription("Messages queued to WebSocket subscribers")); err != nil {
		return nil, err
	}
	if h.dropped, err = meter.Int64Counter("descstats_ws_clients_dropped",
		metric.WithDescription("Subscribers disconnected because their buffer was full")); err != nil {
		return nil, err
	}
	return h, nil
}

// Start runs the hub loop on its own goroutine. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.run()
}

// Stop ends the hub loop and closes every client's send buffer, which makes
// the write pumps close their connections.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.quit)
	})
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if running {
		<-h.done
	}
}

func (h *Hub) run() {
	defer close(h.done)
	ctx := context.Background()

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.clientsG.Add(ctx, 1)

			h.logger.InfoContext(client.ctx(), "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			if data, err := encode(Message{
				Type:      TypeConnection,
				Data:      map[string]string{"status": "connected", "client_id": client.id},
				Timestamp: time.Now().UTC(),
				TraceID:   client.traceID,
			}); err == nil {
				h.deliver(client, data)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()
				h.clientsG.Add(ctx, -1)

				h.logger.InfoContext(client.ctx(), "Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				h.deliver(client, message)
			}
			h.logger.Debug("Broadcast message",
				slog.Int("client_count", len(clients)),
				slog.Int("message_size", len(message)))
		}
	}
}

// deliver queues message for client, dropping the client when its buffer is
// full. Only the hub loop calls it.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.send <- message:
		h.sent.Add(context.Background(), 1)
	default:
		h.mu.Lock()
		if _, ok := h.clients[client]; ok {
			delete(h.clients, client)
			close(client.send)
			h.clientsG.Add(context.Background(), -1)
		}
		h.mu.Unlock()
		h.dropped.Add(context.Background(), 1)
		h.logger.WarnContext(client.ctx(), "Client send buffer full, disconnecting",
			slog.String("client_id", client.id))
	}
}

// Register adds client to the hub. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Broadcast sends msg to every connected client
func (h *Hub) Broadcast(ctx context.Context, msg Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if msg.TraceID == "" {
		msg.TraceID = infrastructure.GetTraceID(ctx)
	}

	data, err := encode(msg)
	if err != nil {
		return err
	}

	// the buffered send would otherwise still succeed after Stop
	select {
	case <-h.quit:
		return errHubStopped
	default:
	}

	select {
	case h.broadcast <- data:
		return nil
	case <-h.quit:
		return errHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish broadcasts an event of eventType carrying data
func (h *Hub) Publish(ctx context.Context, eventType string, data any) error {
	return h.Broadcast(ctx, Message{Type: eventType, Data: data})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", msg.Type, err)
	}
	return data, nil
}
