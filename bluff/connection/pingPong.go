package connection

import (
	"time"

	"doodlebluff/bluff/broadcast"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = 10 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

func extendReadDeadline(c *broadcast.Client) {
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
}

// MaintainWebSocketConnection pings the client until done is closed or a ping fails.
// A client that stops answering hits its read deadline and the read loop ends the connection.
func MaintainWebSocketConnection(c *broadcast.Client, done <-chan struct{}, logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logger.Warn("Error sending ping", zap.String("code", c.Code), zap.Error(err))
				return
			}
		}
	}
}
