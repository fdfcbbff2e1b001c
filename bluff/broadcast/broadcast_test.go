package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"doodlebluff/database"
	"doodlebluff/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEncode(t *testing.T) {
	msg, err := Encode(Event{Code: "1234", Name: EventVoteSubmitted, Payload: map[string]string{"participantId": "p1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"vote-submitted","payload":{"participantId":"p1"}}`, string(msg))
	assert.Equal(t, "game-1234", Channel("1234"))
}

// hubServer subscribes every websocket connection to the code in its path.
func hubServer(t *testing.T, hub *Hub) *httptest.Server {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := hub.Subscribe(strings.TrimPrefix(r.URL.Path, "/"), conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.Unsubscribe(client)
				conn.Close()
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, code string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/"+code, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var f Frame
	require.NoError(t, json.Unmarshal(msg, &f))
	return f
}

func TestHubDeliversToSubscribersOfCode(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := hubServer(t, hub)

	first := dial(t, srv, "1111")
	second := dial(t, srv, "1111")
	other := dial(t, srv, "2222")
	require.Eventually(t, func() bool { return hub.Subscribers("1111") == 2 && hub.Subscribers("2222") == 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), Event{Code: "1111", Name: EventPhaseChanged, Payload: map[string]string{"phase": "voting"}}))

	for _, conn := range []*websocket.Conn{first, second} {
		f := readFrame(t, conn)
		assert.Equal(t, EventPhaseChanged, f.Event)
		assert.JSONEq(t, `{"phase":"voting"}`, string(f.Payload))
	}

	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestHubUnsubscribeOnClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := hubServer(t, hub)

	conn := dial(t, srv, "3333")
	require.Eventually(t, func() bool { return hub.Subscribers("3333") == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers("3333") == 0 }, 2*time.Second, 10*time.Millisecond)
}

type sink struct {
	mu  sync.Mutex
	got map[string][][]byte
}

func (s *sink) Deliver(code string, msg []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.got == nil {
		s.got = map[string][][]byte{}
	}
	s.got[code] = append(s.got[code], msg)
}

func (s *sink) count(code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got[code])
}

func TestRedisPublisherAndRelay(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &sink{}
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- Relay(ctx, rdb, out, zap.NewNop(), ready) }()
	<-ready

	pub := NewRedisPublisher(rdb)
	require.NoError(t, pub.Publish(ctx, Event{Code: "4321", Name: EventPlayerJoined, Payload: map[string]any{"player": map[string]string{"id": "p"}}}))
	require.NoError(t, pub.Publish(ctx, Event{Code: "9999", Name: EventGuessSubmitted, Payload: map[string]string{}}))

	require.Eventually(t, func() bool { return out.count("4321") == 1 && out.count("9999") == 1 }, 2*time.Second, 10*time.Millisecond)

	var f Frame
	out.mu.Lock()
	require.NoError(t, json.Unmarshal(out.got["4321"][0], &f))
	out.mu.Unlock()
	assert.Equal(t, EventPlayerJoined, f.Event)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestRedisPublisherReportsFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })
	mr.Close()

	err := NewRedisPublisher(rdb).Publish(context.Background(), Event{Code: "1", Name: EventVoteSubmitted})
	assert.Error(t, err)
}

type failing struct{}

func (failing) Publish(context.Context, Event) error { return errors.New("down") }

func TestJournalRecordsBeforeForwarding(t *testing.T) {
	db, err := database.InitSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	ctx := context.Background()

	j := NewJournal(db, failing{})
	err = j.Publish(ctx, Event{Code: "1234", SessionID: "s1", Name: EventDrawingSubmitted, Payload: map[string]string{"participantId": "p"}})
	assert.Error(t, err, "forwarding failure is reported")

	require.NoError(t, NewJournal(db, nil).Publish(ctx, Event{Code: "1234", SessionID: "s1", Name: EventGuessSubmitted, Payload: map[string]string{}}))
	require.NoError(t, NewJournal(db, nil).Publish(ctx, Event{Code: "1234", SessionID: "s2", Name: EventGuessSubmitted, Payload: map[string]string{}}))

	events, err := Since(ctx, db, "s1", 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventDrawingSubmitted, events[0].Name)
	assert.JSONEq(t, `{"participantId":"p"}`, string(events[0].Payload))

	var total int64
	require.NoError(t, db.Model(&models.Event{}).Count(&total).Error)
	assert.Equal(t, int64(3), total)
}
