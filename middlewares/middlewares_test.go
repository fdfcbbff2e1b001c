package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"doodlebluff/auth"
	"doodlebluff/database"
	"doodlebluff/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter(t *testing.T) {
	router := gin.New()
	router.Use(NewRateLimiter(1, 2).Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterForgetsIdleClients(t *testing.T) {
	l := NewRateLimiter(1, 1)
	start := time.Now()

	assert.True(t, l.allow("a", start))
	assert.False(t, l.allow("a", start))
	assert.True(t, l.allow("b", start))

	later := start.Add(limiterIdle + 2*time.Minute)
	assert.True(t, l.allow("c", later))
	assert.NotContains(t, l.visitors, "a")
}

func TestHostAuth(t *testing.T) {
	db, err := database.InitSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	session := models.Session{Code: "4321", HostID: "host", Status: "lobby"}
	require.NoError(t, db.Create(&session).Error)
	other := models.Session{Code: "9876", HostID: "host", Status: "lobby"}
	require.NoError(t, db.Create(&other).Error)

	auth.SetKey("middleware-test")
	good, err := auth.GenerateHostToken(session.ID, "host")
	require.NoError(t, err)
	foreign, err := auth.GenerateHostToken(other.ID, "host")
	require.NoError(t, err)

	router := gin.New()
	router.POST("/games/:code/start", HostAuth(db, zap.NewNop()), func(c *gin.Context) {
		claims := c.MustGet(HostClaimsKey).(*models.HostClaims)
		c.JSON(http.StatusOK, gin.H{"session": claims.SessionID})
	})

	cases := []struct {
		name  string
		code  string
		token string
		want  int
	}{
		{"valid", "4321", good, http.StatusOK},
		{"missing", "4321", "", http.StatusUnauthorized},
		{"garbage", "4321", "abc", http.StatusUnauthorized},
		{"other session", "4321", foreign, http.StatusForbidden},
		{"unknown code", "1111", good, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/games/"+tc.code+"/start", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}
