package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"doodlebluff/auth"
	"doodlebluff/internal/game"
	"doodlebluff/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HostClaimsKey is the gin context key holding the verified host claims.
const HostClaimsKey = "hostClaims"

// HostAuth lets a request through only when its bearer token was issued for the active session of the
// :code path parameter.
func HostAuth(db *gorm.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "host token required"})
			return
		}
		claims, err := auth.ParseHostToken(tokenString)
		if err != nil {
			logger.Warn("Rejected host token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid host token"})
			return
		}

		code := c.Param("code")
		var s models.Session
		err = db.WithContext(c.Request.Context()).
			Where("code = ? AND status <> ?", code, game.PhaseFinished).
			Order("created_at DESC").
			First(&s).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": game.ErrSessionNotFound.Message})
				return
			}
			logger.Error("Failed to load session for host check", zap.String("code", code), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error", "retry": true})
			return
		}

		if claims.SessionID != s.ID || claims.HostID != s.HostID {
			logger.Warn("Host token for another session", zap.String("code", code))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": game.ErrNotHost.Message})
			return
		}

		c.Set(HostClaimsKey, claims)
		c.Next()
	}
}
