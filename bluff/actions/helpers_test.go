package actions

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"doodlebluff/bluff/broadcast"
	"doodlebluff/database"
	"doodlebluff/internal/game"
	"doodlebluff/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu     sync.Mutex
	events []broadcast.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, ev broadcast.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) named(name string) []broadcast.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []broadcast.Event
	for _, ev := range r.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) phases() []game.Phase {
	var out []game.Phase
	for _, ev := range r.named(broadcast.EventPhaseChanged) {
		out = append(out, ev.Payload.(PhaseChange).Phase)
	}
	return out
}

func newTestController(t *testing.T, pub broadcast.Publisher) *Controller {
	t.Helper()
	db, err := database.InitSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	c := NewController(db, pub, zap.NewNop(), Options{DefaultRounds: 1, MaxRounds: 10})
	c.shuffle = func(int, func(i, j int)) {}
	return c
}

// table is a game with joined players named A, B, C, ... in join order.
type table struct {
	c       *Controller
	pub     *recorder
	code    string
	players []*models.Participant
}

func newTable(t *testing.T, players, rounds int) *table {
	t.Helper()
	pub := &recorder{}
	c := newTestController(t, pub)
	ctx := context.Background()

	s, err := c.CreateSession(ctx, models.CreateSessionRequest{HostID: "host", Rounds: rounds})
	require.NoError(t, err)

	tb := &table{c: c, pub: pub, code: s.Code}
	for i := 0; i < players; i++ {
		name := string(rune('A' + i))
		p, err := c.JoinSession(ctx, s.Code, models.JoinRequest{Name: name, DeviceToken: "device-" + name})
		require.NoError(t, err)
		tb.players = append(tb.players, p)
	}
	return tb
}

func (tb *table) start(t *testing.T) {
	t.Helper()
	_, err := tb.c.StartSession(context.Background(), tb.code)
	require.NoError(t, err)
}

func (tb *table) draw(t *testing.T, i int, prompt string) {
	t.Helper()
	err := tb.c.SubmitDrawing(context.Background(), tb.code, models.DrawingRequest{
		ParticipantID: tb.players[i].ID,
		ImageData:     fmt.Sprintf("data:image/png;base64,%d", i),
		PromptText:    prompt,
	})
	require.NoError(t, err)
}

func (tb *table) drawAll(t *testing.T) {
	t.Helper()
	for i := range tb.players {
		tb.draw(t, i, "")
	}
}

func (tb *table) session(t *testing.T) *models.Session {
	t.Helper()
	view, err := tb.c.GetSession(context.Background(), tb.code)
	require.NoError(t, err)
	return view.Session
}

func (tb *table) current(t *testing.T) *models.Submission {
	t.Helper()
	view, err := tb.c.GetCurrent(context.Background(), tb.code)
	require.NoError(t, err)
	return view.Submission
}

func (tb *table) caption(t *testing.T, i int, sub *models.Submission, text string) {
	t.Helper()
	err := tb.c.SubmitCaption(context.Background(), tb.code, models.CaptionRequest{
		ParticipantID: tb.players[i].ID,
		SubmissionID:  sub.ID,
		Text:          text,
	})
	require.NoError(t, err)
}

func (tb *table) captionID(t *testing.T, sub *models.Submission, text string) string {
	t.Helper()
	var cp models.Caption
	require.NoError(t, tb.c.db.Where("submission_id = ? AND text = ?", sub.ID, text).First(&cp).Error)
	return cp.ID
}

func (tb *table) vote(i int, captionID string) error {
	return tb.c.SubmitBallot(context.Background(), tb.code, models.BallotRequest{
		ParticipantID: tb.players[i].ID,
		CaptionID:     captionID,
	})
}

func (tb *table) scores(t *testing.T) map[string]int {
	t.Helper()
	view, err := tb.c.GetSession(context.Background(), tb.code)
	require.NoError(t, err)
	out := map[string]int{}
	for _, p := range view.Participants {
		out[p.Name] = p.Score
	}
	return out
}

// playSubmission runs guessing and voting on the current drawing: every non-artist writes a decoy and
// votes for the real prompt.
func (tb *table) playSubmission(t *testing.T) {
	t.Helper()
	sub := tb.current(t)
	for i, p := range tb.players {
		if p.ID != sub.AuthorID {
			tb.caption(t, i, sub, "decoy by "+p.Name)
		}
	}
	var original models.Caption
	require.NoError(t, tb.c.db.Where("submission_id = ? AND original = ?", sub.ID, true).First(&original).Error)
	for i, p := range tb.players {
		if p.ID != sub.AuthorID {
			require.NoError(t, tb.vote(i, original.ID))
		}
	}
}
