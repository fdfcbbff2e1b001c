// Package actions holds the phase controller: one method per client action. Every method reads the
// session fresh from the store, writes, re-counts, and moves the session through the transition table
// with a compare-and-swap so that racing requests apply a transition once.
package actions

import (
	"context"
	"errors"
	"time"

	"doodlebluff/bluff/broadcast"
	"doodlebluff/internal/game"
	"doodlebluff/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxCodeAttempts  = 50
	maxNameLength    = 24
	maxCaptionLength = 80
	eventPageSize    = 100
	publishTimeout   = 5 * time.Second
)

// Options are the game length settings.
type Options struct {
	DefaultRounds int
	MaxRounds     int
}

type Controller struct {
	db        *gorm.DB
	publisher broadcast.Publisher
	logger    *zap.Logger
	opts      Options

	newCode func() string
	shuffle func(n int, swap func(i, j int))
}

func NewController(db *gorm.DB, publisher broadcast.Publisher, logger *zap.Logger, opts Options) *Controller {
	if opts.DefaultRounds < 1 {
		opts.DefaultRounds = 1
	}
	if opts.MaxRounds < opts.DefaultRounds {
		opts.MaxRounds = opts.DefaultRounds
	}
	if publisher == nil {
		publisher = broadcast.Nop{}
	}
	return &Controller{
		db:        db,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		newCode:   game.NewJoinCode,
	}
}

// PhaseChange is the payload of a phase-changed event.
type PhaseChange struct {
	Phase   game.Phase        `json:"phase"`
	Round   int               `json:"round"`
	Index   int               `json:"index"`
	Prompts []game.Assignment `json:"prompts,omitempty"`
}

// notify publishes after a commit. A failed publish is logged and swallowed: the store already holds
// the new state and clients re-fetch it.
func (c *Controller) notify(ctx context.Context, s *models.Session, name string, payload any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := broadcast.Event{Code: s.Code, SessionID: s.ID, Name: name, Payload: payload}
	if err := c.publisher.Publish(ctx, ev); err != nil {
		c.logger.Warn("Broadcast failed after commit",
			zap.String("code", s.Code), zap.String("event", name), zap.Error(err))
	}
}

func (c *Controller) notifyPhase(ctx context.Context, s *models.Session, prompts []game.Assignment) {
	c.notify(ctx, s, broadcast.EventPhaseChanged, PhaseChange{
		Phase:   s.Status,
		Round:   s.CurrentRound,
		Index:   s.CurrentIndex,
		Prompts: prompts,
	})
}

// fire applies trigger outside any surrounding transaction and announces the new phase when this
// request was the one that moved the session.
func (c *Controller) fire(ctx context.Context, s *models.Session, trigger game.Trigger, lim game.Limits) (bool, error) {
	next, err := game.Next(s.State(), trigger, lim)
	if err != nil {
		return false, err
	}
	from := s.Status
	applied, err := casState(ctx, c.db, s, next)
	if err != nil {
		return false, game.Upstream(err, "failed to update game")
	}
	if !applied {
		return false, nil
	}
	c.logTransition(s, from)
	c.notifyPhase(ctx, s, nil)
	return true, nil
}

func (c *Controller) logTransition(s *models.Session, from game.Phase) {
	c.logger.Info("Phase changed",
		zap.String("session", s.ID),
		zap.String("code", s.Code),
		zap.String("from", from.String()),
		zap.String("to", s.Status.String()),
		zap.Int("round", s.CurrentRound),
		zap.Int("index", s.CurrentIndex),
	)
}

// asUpstream keeps classified errors and wraps everything else as a store failure.
func asUpstream(err error, msg string) error {
	var gameErr *game.Error
	if errors.As(err, &gameErr) {
		return err
	}
	return game.Upstream(err, msg)
}

// casState writes next only if the session still holds the triple s was read with, and mirrors the
// result into s.
func casState(ctx context.Context, db *gorm.DB, s *models.Session, next game.State) (bool, error) {
	res := db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND status = ? AND current_round = ? AND current_index = ?",
			s.ID, s.Status, s.CurrentRound, s.CurrentIndex).
		Updates(map[string]any{
			"status":        next.Phase,
			"current_round": next.Round,
			"current_index": next.Index,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.Status, s.CurrentRound, s.CurrentIndex = next.Phase, next.Round, next.Index
	return true, nil
}
