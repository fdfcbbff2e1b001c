package screens

import (
	"net/http"
	"strconv"

	"doodlebluff/bluff/actions"
	"doodlebluff/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func JoinGame(c *gin.Context, ctrl *actions.Controller, logger *zap.Logger) {
	var request models.JoinRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		bindError(c, logger, err)
		return
	}
	participant, err := ctrl.JoinSession(c.Request.Context(), c.Param("code"), request)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant": participant})
}

func SubmitDrawing(c *gin.Context, ctrl *actions.Controller, logger *zap.Logger) {
	var request models.DrawingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		bindError(c, logger, err)
		return
	}
	if err := ctrl.SubmitDrawing(c.Request.Context(), c.Param("code"), request); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func SubmitCaption(c *gin.Context, ctrl *actions.Controller, logger *zap.Logger) {
	var request models.CaptionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		bindError(c, logger, err)
		return
	}
	if err := ctrl.SubmitCaption(c.Request.Context(), c.Param("code"), request); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func SubmitBallot(c *gin.Context, ctrl *actions.Controller, logger *zap.Logger) {
	var request models.BallotRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		bindError(c, logger, err)
		return
	}
	if err := ctrl.SubmitBallot(c.Request.Context(), c.Param("code"), request); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// GetGame is the snapshot every screen re-reads after an event.
func GetGame(c *gin.Context, ctrl *actions.Controller, logger *zap.Logger) {
	view, err := ctrl.GetSession(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func GetCurrent(c *gin.Context, ctrl *actions.Controller, logger *zap.Logger) {
	view, err := ctrl.GetCurrent(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func GetPrompt(c *gin.Context, ctrl *actions.Controller, logger *zap.Logger) {
	view, err := ctrl.GetPrompt(c.Request.Context(), c.Param("code"), c.Param("participantId"))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListEvents serves the journal to clients that poll instead of holding a socket.
func ListEvents(c *gin.Context, ctrl *actions.Controller, logger *zap.Logger) {
	var after uint64
	if raw := c.Query("after"); raw != "" {
		var err error
		if after, err = strconv.ParseUint(raw, 10, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "after must be a positive number"})
			return
		}
	}
	events, err := ctrl.Events(c.Request.Context(), c.Param("code"), uint(after))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
