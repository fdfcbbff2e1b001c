package connection

import (
	"context"
	"net/http"

	"doodlebluff/bluff/broadcast"
	"doodlebluff/internal/game"
	"doodlebluff/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HandleConnections upgrades the request and streams the events of code until the client goes away.
// Clients only listen; anything they send is discarded.
func HandleConnections(ctx context.Context, w http.ResponseWriter, r *http.Request, code string, db *gorm.DB, hub *broadcast.Hub, upgrader websocket.Upgrader, logger *zap.Logger) {
	var active int64
	err := db.WithContext(ctx).Model(&models.Session{}).
		Where("code = ? AND status <> ?", code, game.PhaseFinished).
		Count(&active).Error
	if err != nil {
		logger.Error("Error looking up session for subscriber", zap.String("code", code), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if active == 0 {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the request.
		logger.Error("Error upgrading WebSocket", zap.Error(err))
		return
	}

	client := hub.Subscribe(code, conn)
	logger.Info("Subscriber added", zap.String("code", code), zap.Int("subscribers", hub.Subscribers(code)))

	done := make(chan struct{})
	go MaintainWebSocketConnection(client, done, logger)

	readUntilClosed(client, logger)

	close(done)
	hub.Unsubscribe(client)
	conn.Close()
	logger.Info("Subscriber removed", zap.String("code", code))
}

func readUntilClosed(c *broadcast.Client, logger *zap.Logger) {
	c.Conn.SetReadLimit(maxMessageSize)
	extendReadDeadline(c)
	c.Conn.SetPongHandler(func(string) error {
		extendReadDeadline(c)
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error", zap.String("code", c.Code), zap.Error(err))
			}
			return
		}
	}
}
