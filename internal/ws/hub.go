package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type envelope struct {
	profileID uuid.UUID
	data      []byte
}

// Hub fans graph events out to the sockets of the profile they belong to. A
// profile may have several open sockets (chat UI and graph renderer).
type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{}
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		broadcast:  make(chan envelope, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and deliveries until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set, ok := h.clients[client.profileID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.profileID] = set
			}
			set[client] = struct{}{}
			total := len(set)
			h.mutex.Unlock()
			h.logger.Debug("WS connected", zap.String("profile_id", client.profileID.String()), zap.Int("profile_clients", total))

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.remove(client)
			h.logger.Debug("WS disconnected", zap.String("profile_id", client.profileID.String()))

		case msg := <-h.broadcast:
			h.mutex.RLock()
			snapshot := make([]*Client, 0, len(h.clients[msg.profileID]))
			for c := range h.clients[msg.profileID] {
				snapshot = append(snapshot, c)
			}
			h.mutex.RUnlock()

			for _, client := range snapshot {
				select {
				case client.send <- msg.data:
				default:
					// slow consumer; it reloads the graph on reconnect
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// NotifyGraphUpdated queues payload for every socket of profileID. It never
// blocks the caller; events are dropped when the queue is full.
func (h *Hub) NotifyGraphUpdated(profileID uuid.UUID, payload any) {
	if h == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("WS encode event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- envelope{profileID: profileID, data: b}:
	default:
		h.logger.Warn("WS event dropped", zap.String("profile_id", profileID.String()), zap.String("reason", "buffer_full"))
	}
}

func (h *Hub) ClientCount(profileID uuid.UUID) int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[profileID])
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	set, ok := h.clients[client.profileID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.profileID)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for id, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, id)
	}
}
