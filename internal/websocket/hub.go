package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"aura-support-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "support_cluster_events"

// Hub fans staff alerts out to every connected support console, on this
// instance directly and on the others through Redis pub/sub.
type Hub struct {
	// staff id -> open consoles; one staff member may have several tabs
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// instanceID tags our own publications so they are not delivered twice
	instanceID string
	ready      chan struct{}

	logger logger.ILogger
}

type clusterMessage struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		ready:      make(chan struct{}),
		logger:     log,
	}
}

// Run owns client registration. It blocks until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	} else {
		close(h.ready)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.staffID] = append(h.clients[client.staffID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"staff_id": client.staffID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.staffID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.staffID] = append(clients[:i], clients[i+1:]...)
						close(client.send)
						break
					}
				}
				if len(h.clients[client.staffID]) == 0 {
					delete(h.clients, client.staffID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"staff_id": client.staffID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends an alert to ALL connected staff clients.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	payload, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": data,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode broadcast", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverLocal(payload)

	if h.rdb != nil {
		msg, _ := json.Marshal(clusterMessage{Origin: h.instanceID, Message: payload})
		if err := h.rdb.Publish(context.Background(), clusterChannel, msg).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish broadcast to Redis", map[string]interface{}{"error": err.Error()})
		}
	}
}

// ClientCount returns the number of locally connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

func (h *Hub) deliverLocal(payload []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.send <- payload:
			default:
				slow = append(slow, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, disconnecting", map[string]interface{}{"staff_id": client.staffID})
		go func(c *Client) { h.unregister <- c }(client)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	// Wait for the subscription confirmation so nothing published after
	// ready is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		h.logger.Warn("Hub", "Redis subscription failed, alerts stay local", map[string]interface{}{"error": err.Error()})
		close(h.ready)
		return
	}
	close(h.ready)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var cm clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &cm); err != nil {
				h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if cm.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(cm.Message)
		}
	}
}
