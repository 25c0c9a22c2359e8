package telemetry

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Snapshot is the per-frame state pushed to stream subscribers.
type Snapshot struct {
	Tick            int32   `json:"tick"`
	Particles       int     `json:"particles"`
	Clusters        int     `json:"clusters"`
	Singles         int     `json:"singles"`
	Groups          int     `json:"groups"`
	Visible         int     `json:"visible"`
	Budget          int     `json:"budget"`
	MultiplierIndex int     `json:"multiplier_index"`
	OverBudget      bool    `json:"over_budget"`
	SpawnInterval   float32 `json:"spawn_interval"`
}

// StreamServer broadcasts frame snapshots to WebSocket subscribers for
// external dashboards. The simulation stays single-threaded: Publish is
// called from the frame loop with a value copy, and slow or dead
// clients are dropped rather than ever blocking the frame.
type StreamServer struct {
	addr     string
	upgrader websocket.Upgrader
	server   *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

// NewStreamServer creates a stream server for the given listen address.
func NewStreamServer(addr string) *StreamServer {
	return &StreamServer{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// Start begins accepting subscribers. Non-blocking.
func (s *StreamServer) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.handleStats)
	s.server = &http.Server{Addr: s.addr, Handler: mux}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("stream server failed", "error", err)
		}
	}()
	slog.Info("stats stream listening", "addr", s.addr)
}

// handleStats upgrades a subscriber connection.
func (s *StreamServer) handleStats(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stream upgrade failed", "error", err)
		return
	}

	send := make(chan []byte, 8)
	s.mu.Lock()
	s.clients[conn] = send
	s.mu.Unlock()

	go s.writePump(conn, send)
}

// writePump drains one client's send channel.
func (s *StreamServer) writePump(conn *websocket.Conn, send chan []byte) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for message := range send {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// Publish broadcasts a snapshot. Clients with full send buffers are
// skipped; they catch up on the next frame.
func (s *StreamServer) Publish(snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, send := range s.clients {
		select {
		case send <- data:
		default:
		}
	}
}

// Close shuts the server down and disconnects subscribers.
func (s *StreamServer) Close() {
	if s.server != nil {
		s.server.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, send := range s.clients {
		close(send)
		delete(s.clients, conn)
	}
}
