package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/handglow/internal/detector"
	"github.com/gorilla/websocket"
)

const writeTimeout = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FingertipSource provides the mirrored fingertips of the last frame.
type FingertipSource interface {
	Fingertips() []detector.Fingertip
	ParticleCount() int
}

type fingertipsMessage struct {
	Fingertips []detector.Fingertip `json:"fingertips"`
	Particles  int                  `json:"particles"`
	Timestamp  int64                `json:"timestamp"`
}

// FingertipsHandler broadcasts fingertip samples via WebSocket.
type FingertipsHandler struct {
	source   FingertipSource
	interval time.Duration
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewFingertipsHandler creates a FingertipsHandler broadcasting once per
// interval while clients are connected.
func NewFingertipsHandler(source FingertipSource, interval time.Duration) *FingertipsHandler {
	h := &FingertipsHandler{
		source:   source,
		interval: interval,
		clients:  make(map[*websocket.Conn]bool),
		stopCh:   make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *FingertipsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *FingertipsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcaster.
func (h *FingertipsHandler) Close() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

// broadcast sends fingertip data to all connected clients.
func (h *FingertipsHandler) broadcast() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		tips := h.source.Fingertips()
		if tips == nil {
			tips = []detector.Fingertip{}
		}
		msg, err := json.Marshal(fingertipsMessage{
			Fingertips: tips,
			Particles:  h.source.ParticleCount(),
			Timestamp:  time.Now().UnixMilli(),
		})
		if err != nil {
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				// The reader loop sees the closed conn and unregisters it.
				conn.Close()
			}
		}
		h.mu.RUnlock()
	}
}
