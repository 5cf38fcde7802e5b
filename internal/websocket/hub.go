package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"atlas-be/internal/entity"
	"atlas-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Hub struct {
	// Registered clients map: ProfileID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fanout
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ProfileID] = append(h.clients[client.ProfileID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"profile_id": client.ProfileID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ProfileID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ProfileID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.ProfileID]) == 0 {
					delete(h.clients, client.ProfileID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"profile_id": client.ProfileID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// dropClients queues stalled clients for removal. Only the unregister
// handler in Run closes a Send channel, so a client that stalls during
// a broadcast and then disconnects on its own is closed exactly once.
// Must be called without holding h.mu: Run needs the lock to process
// the unregister.
func (h *Hub) dropClients(dead []*Client) {
	for _, client := range dead {
		h.unregister <- client
	}
}

func encodeNotification(notification entity.Notification) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	return data
}

// Broadcast sends a notification to ALL connected clients.
func (h *Hub) Broadcast(notification entity.Notification) {
	data := encodeNotification(notification)

	h.mu.RLock()
	var dead []*Client
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				dead = append(dead, client)
			}
		}
	}
	h.mu.RUnlock()
	h.dropClients(dead)

	// Other instances pick this up off the cluster channel.
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_profile_id": "*",
			"message":           data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// Send delivers a notification to every device of one profile.
func (h *Hub) Send(profileID uuid.UUID, notification entity.Notification) {
	data := encodeNotification(notification)

	h.mu.RLock()
	clients, localFound := h.clients[profileID]
	h.mu.RUnlock()

	if localFound {
		var dead []*Client
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"profile_id": profileID})
				dead = append(dead, client)
			}
		}
		h.dropClients(dead)
	}

	// Always publish so instances holding the profile's other devices deliver too.
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_profile_id": profileID.String(),
			"message":           data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetProfileID string          `json:"target_profile_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetProfileID == "*" {
			h.mu.RLock()
			var dead []*Client
			for _, clients := range h.clients {
				for _, client := range clients {
					select {
					case client.Send <- payload.Message:
					default:
						dead = append(dead, client)
					}
				}
			}
			h.mu.RUnlock()
			h.dropClients(dead)
			continue
		}

		uid, err := uuid.Parse(payload.TargetProfileID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[uid]
		h.mu.RUnlock()

		if ok {
			var dead []*Client
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					dead = append(dead, client)
				}
			}
			h.dropClients(dead)
		}
	}
}
