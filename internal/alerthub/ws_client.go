package alerthub

import (
	"encoding/json"
	"sync"
	"time"

	"complaintdesk/dashboard/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WebSocketClient implements Client over a gorilla websocket.
type WebSocketClient struct {
	ID      string
	Profile string
	Conn    *websocket.Conn
	Hub     *Manager
	Send    chan models.AlertMessage

	closeOnce sync.Once
}

func NewWebSocketClient(id, profile string, conn *websocket.Conn, hub *Manager) *WebSocketClient {
	return &WebSocketClient{
		ID:      id,
		Profile: profile,
		Conn:    conn,
		Hub:     hub,
		Send:    make(chan models.AlertMessage, 16),
	}
}

func (c *WebSocketClient) GetClientID() string                        { return c.ID }
func (c *WebSocketClient) GetProfile() string                         { return c.Profile }
func (c *WebSocketClient) GetSendChannel() chan<- models.AlertMessage { return c.Send }

func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close stops the write pump, which closes the connection.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// readPump only watches for pongs and the peer going away; dashboards never
// send anything.
func (c *WebSocketClient) readPump() {
	defer func() {
		select {
		case c.Hub.UnregisterCh <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.WithError(err).WithField("client", c.ID).Warn("websocket read failed")
			}
			return
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				c.Hub.log.WithError(err).WithField("client", c.ID).Error("encode alert")
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
