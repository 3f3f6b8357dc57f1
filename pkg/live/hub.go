// Package live pushes engine snapshots to dashboards over websockets.
package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"agrisentry/pkg/simulation"
)

// Frame is the JSON message sent for each tick.
type Frame struct {
	Type          string                           `json:"type"`
	SimulatedTime time.Time                        `json:"simulated_time"`
	Tick          uint64                           `json:"tick"`
	Fields        map[string]simulation.FieldState `json:"fields"`
}

func encode(s simulation.Snapshot) ([]byte, error) {
	return json.Marshal(Frame{Type: "snapshot", SimulatedTime: s.SimulatedTime, Tick: s.Tick, Fields: s.Fields})
}

// Hub maintains the set of connected clients and fans frames out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.log.Info("hub stopped")
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client connected", zap.Int("clients", n))
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client disconnected", zap.Int("clients", n))
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow reader
					close(c.send)
					delete(h.clients, c)
					h.log.Warn("dropping slow client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues a snapshot for broadcast. It never blocks: when the queue is
// full the snapshot is dropped, since the next tick supersedes it.
func (h *Hub) Publish(s simulation.Snapshot) {
	msg, err := encode(s)
	if err != nil {
		h.log.Error("encode snapshot", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Debug("broadcast queue full, snapshot dropped", zap.Uint64("tick", s.Tick))
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
