package ws

import (
	"context"
	"sync"

	"kala/internal/domain/chat"
	"kala/internal/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type outbound struct {
	session uuid.UUID
	payload []byte
}

// Hub fans chat events out to the websocket clients of each session.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan outbound, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger,
	}
}

// Run serves the hub until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
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
			set, ok := h.clients[client.session]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.session] = set
			}
			set[client] = true
			total := h.countLocked()
			h.mutex.Unlock()
			metrics.WSClients.Set(float64(total))
			h.logger.Debug("ws connected", zap.String("session_id", client.session.String()), zap.Int("total_clients", total))

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.drop(client)

		case msg := <-h.broadcast:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.clients[msg.session]))
			for c := range h.clients[msg.session] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.payload:
				default:
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	h.mutex.Lock()
	set := h.clients[client.session]
	if _, ok := set[client]; ok {
		delete(set, client)
		close(client.send)
		if len(set) == 0 {
			delete(h.clients, client.session)
		}
	}
	total := h.countLocked()
	h.mutex.Unlock()
	metrics.WSClients.Set(float64(total))
	h.logger.Debug("ws disconnected", zap.String("session_id", client.session.String()), zap.Int("total_clients", total))
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
	metrics.WSClients.Set(0)
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// Publish queues m for the clients of sessionID. It never blocks; when the
// queue is full the event is dropped.
func (h *Hub) Publish(sessionID uuid.UUID, m chat.Message) {
	if h == nil {
		return
	}
	b, err := encodeChatMessage(sessionID, m)
	if err != nil {
		h.logger.Warn("ws encode failed", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- outbound{session: sessionID, payload: b}:
	default:
		h.logger.Warn("ws broadcast dropped", zap.String("reason", "buffer_full"))
	}
}

func (h *Hub) ClientCount(sessionID uuid.UUID) int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[sessionID])
}
