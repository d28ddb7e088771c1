package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 // consoles only send pongs and close frames
	sendBuffer     = 64
)

// Client is one connected support console.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	staffID string
	send    chan []byte
}

// Serve registers an authenticated staff connection and blocks until it
// closes. It runs inside the fiber websocket handler.
func (h *Hub) Serve(conn *websocket.Conn, staffID string) {
	c := &Client{hub: h, conn: conn, staffID: staffID, send: make(chan []byte, sendBuffer)}
	h.register <- c

	go c.writePump()
	c.readPump()
}

// readPump only watches for pongs and disconnects.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Client", "Unexpected websocket close", map[string]interface{}{
					"staff_id": c.staffID,
					"error":    err.Error(),
				})
			}
			return
		}
	}
}

// writePump forwards alerts to the console and keeps it alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case alert, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, alert); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.logger.Debug("Client", "Ping failed", map[string]interface{}{"staff_id": c.staffID, "error": err.Error()})
				return
			}
		}
	}
}
