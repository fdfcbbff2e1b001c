package screens

import (
	"net/http"

	"doodlebluff/bluff/actions"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes mounts the game API. hostOnly guards start, advance and end; limit throttles writes.
func RegisterRoutes(router gin.IRouter, ctrl *actions.Controller, logger *zap.Logger, hostOnly, limit gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/games")
	api.POST("", limit, func(c *gin.Context) {
		CreateGame(c, ctrl, logger)
	})
	api.GET("/:code", func(c *gin.Context) {
		GetGame(c, ctrl, logger)
	})
	api.POST("/:code/join", limit, func(c *gin.Context) {
		JoinGame(c, ctrl, logger)
	})
	api.POST("/:code/start", hostOnly, func(c *gin.Context) {
		StartGame(c, ctrl, logger)
	})
	api.POST("/:code/drawings", limit, func(c *gin.Context) {
		SubmitDrawing(c, ctrl, logger)
	})
	api.POST("/:code/captions", limit, func(c *gin.Context) {
		SubmitCaption(c, ctrl, logger)
	})
	api.POST("/:code/ballots", limit, func(c *gin.Context) {
		SubmitBallot(c, ctrl, logger)
	})
	api.GET("/:code/reveal", func(c *gin.Context) {
		Reveal(c, ctrl, logger)
	})
	api.POST("/:code/advance", hostOnly, func(c *gin.Context) {
		AdvanceGame(c, ctrl, logger)
	})
	api.POST("/:code/end", hostOnly, func(c *gin.Context) {
		EndGame(c, ctrl, logger)
	})
	api.GET("/:code/current", func(c *gin.Context) {
		GetCurrent(c, ctrl, logger)
	})
	api.GET("/:code/participants/:participantId/prompt", func(c *gin.Context) {
		GetPrompt(c, ctrl, logger)
	})
	api.GET("/:code/events", func(c *gin.Context) {
		ListEvents(c, ctrl, logger)
	})
}
