package handler

import (
	"complaintdesk/dashboard/internal/alerthub"
	"complaintdesk/dashboard/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeWebSocket streams unattended popups for the caller's profile.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	entry := c.MustGet(sessionKey).(*session.Entry)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := alerthub.NewWebSocketClient(session.NewID(), entry.Profile, conn, h.Hub)
	select {
	case h.Hub.RegisterCh <- client:
	case <-c.Request.Context().Done():
		conn.Close()
		return
	}
	client.Run()
}
