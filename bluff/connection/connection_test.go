package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"doodlebluff/bluff/broadcast"
	"doodlebluff/database"
	"doodlebluff/internal/game"
	"doodlebluff/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleConnectionsStreamsEvents(t *testing.T) {
	db, err := database.InitSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, db.Create(&models.Session{Code: "5555", HostID: "h", Status: game.PhaseLobby}).Error)

	hub := broadcast.NewHub(zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/ws/")
		HandleConnections(r.Context(), w, r, code, db, hub, websocket.Upgrader{}, zap.NewNop())
	}))
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(base+"/ws/0000", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/ws/5555", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Subscribers("5555") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), broadcast.Event{Code: "5555", Name: broadcast.EventPhaseChanged, Payload: map[string]string{"phase": "drawing"}}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var f broadcast.Frame
	require.NoError(t, json.Unmarshal(msg, &f))
	assert.Equal(t, broadcast.EventPhaseChanged, f.Event)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers("5555") == 0 }, 2*time.Second, 10*time.Millisecond)
}
