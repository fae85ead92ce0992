package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"brigade/internal/terminal"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Displays connect from the local network
	},
}

// hub fans one session's snapshots out to its connected displays.
type hub struct {
	mu    sync.Mutex
	conns map[*wsConn]bool
}

func newHub() *hub {
	return &hub{conns: make(map[*wsConn]bool)}
}

// broadcast serializes a snapshot and queues it on every display.
func (h *hub) broadcast(snap terminal.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("Error marshaling snapshot: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		select {
		case conn.send <- data:
		default:
			log.Println("WebSocket buffer full, dropping snapshot")
		}
	}
}

func (h *hub) add(conn *wsConn) {
	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
}

func (h *hub) remove(conn *wsConn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		close(conn.send)
		delete(h.conns, conn)
	}
}

// wsConn maintains one display's WebSocket connection.
type wsConn struct {
	conn *websocket.Conn
	send chan []byte
	hub  *hub
}

// handleWebSocket attaches a display to its terminal session's snapshot
// stream. The terminal token is passed as a query parameter because browser
// WebSocket clients cannot set headers.
func (s *Server) handleWebSocket(c *gin.Context) {
	sess, err := s.sessionForToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	h := s.hubs[sess.ID]
	s.mu.Unlock()
	if h == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	ws := &wsConn{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}
	h.add(ws)

	// Send the current state immediately so a fresh display is not blank
	// until the next change.
	if data, err := json.Marshal(sess.Snapshot()); err == nil {
		ws.send <- data
	}

	go ws.writePump()
	go ws.readPump()
}

// readPump drains the connection until the display goes away.
func (c *wsConn) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps queued snapshots to the display and keeps the connection
// alive with pings.
func (c *wsConn) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The hub closed us
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
