package screens

import (
	"net/http"

	"doodlebluff/auth"
	"doodlebluff/bluff/actions"
	"doodlebluff/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateGame opens a lobby and hands the host the token for start, advance and end.
func CreateGame(c *gin.Context, ctrl *actions.Controller, logger *zap.Logger) {
	var request models.CreateSessionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		bindError(c, logger, err)
		return
	}

	session, err := ctrl.CreateSession(c.Request.Context(), request)
	if err != nil {
		respondHostError(c, logger, err)
		return
	}
	token, err := auth.GenerateHostToken(session.ID, session.HostID)
	if err != nil {
		logger.Error("Host token generation error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue host token", "retry": true})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":       session.Code,
		"sessionId":  session.ID,
		"roundCount": session.RoundCount,
		"hostToken":  token,
	})
}

func StartGame(c *gin.Context, ctrl *actions.Controller, logger *zap.Logger) {
	session, err := ctrl.StartSession(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondHostError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func AdvanceGame(c *gin.Context, ctrl *actions.Controller, logger *zap.Logger) {
	session, err := ctrl.Advance(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondHostError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func EndGame(c *gin.Context, ctrl *actions.Controller, logger *zap.Logger) {
	session, err := ctrl.EndSession(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondHostError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Reveal is fetched by the host display; the first fetch scores the drawing.
func Reveal(c *gin.Context, ctrl *actions.Controller, logger *zap.Logger) {
	view, err := ctrl.GetReveal(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondHostError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
