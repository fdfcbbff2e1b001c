package screens

import (
	"net/http"

	"doodlebluff/internal/game"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusOf(kind game.Kind) int {
	switch kind {
	case game.KindNotFound:
		return http.StatusNotFound
	case game.KindConflict, game.KindPrecondition:
		return http.StatusBadRequest
	case game.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondError answers a player-facing action that failed.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := game.KindOf(err)
	if kind == game.KindUpstream {
		logger.Error("Action failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(statusOf(kind), gin.H{"error": game.MessageOf(err)})
}

// respondHostError answers a host action that failed; failures the host can retry say so.
func respondHostError(c *gin.Context, logger *zap.Logger, err error) {
	kind := game.KindOf(err)
	if kind == game.KindUpstream {
		logger.Error("Host action failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	body := gin.H{"error": game.MessageOf(err)}
	if kind == game.KindUpstream || kind == game.KindPrecondition {
		body["retry"] = true
	}
	c.JSON(statusOf(kind), body)
}

func bindError(c *gin.Context, logger *zap.Logger, err error) {
	logger.Info("Request binding error", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
