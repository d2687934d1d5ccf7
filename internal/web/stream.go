package web

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/firstcontact/missing-link/internal/status"
)

const writeTimeout = 5 * time.Second

// Stream pushes status snapshots to websocket clients whenever the ring
// state changes. Clients that cannot keep up are dropped rather than
// allowed to block the broadcast.
type Stream struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

// NewStream creates an empty stream.
func NewStream() *Stream {
	return &Stream{
		upgrader: websocket.Upgrader{
			// Status page and stream are same-origin on the LAN.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// Broadcast sends the snapshot JSON to every connected client.
func (s *Stream) Broadcast(snap status.Snapshot) {
	payload := status.FormatJSON(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, ch := range s.clients {
		select {
		case ch <- payload:
		default:
			// Slow consumer; drop it.
			delete(s.clients, conn)
			close(ch)
		}
	}
}

// ClientCount returns the number of connected clients.
func (s *Stream) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Stream) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade: %v", err)
		return
	}

	ch := make(chan []byte, 8)
	s.mu.Lock()
	s.clients[conn] = ch
	s.mu.Unlock()

	go s.writeLoop(conn, ch)
	go s.readLoop(conn)
}

func (s *Stream) writeLoop(conn *websocket.Conn, ch chan []byte) {
	defer conn.Close()
	for payload := range ch {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.drop(conn)
			return
		}
	}
}

// readLoop discards inbound frames and notices disconnects.
func (s *Stream) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.drop(conn)
			return
		}
	}
}

func (s *Stream) drop(conn *websocket.Conn) {
	s.mu.Lock()
	if ch, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		close(ch)
	}
	s.mu.Unlock()
	conn.Close()
}
