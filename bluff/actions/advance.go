package actions

import (
	"context"
	"errors"
	"time"

	"doodlebluff/internal/game"
	"doodlebluff/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Advance moves the presentation on: to the next drawing, to the scoreboard after the last one, and from
// the scoreboard to the next round or the end of the game. A drawing that was never revealed is scored
// in the same step that moves the index past it. Two hosts pressing at once move the session one step.
func (c *Controller) Advance(ctx context.Context, code string) (*models.Session, error) {
	s, err := c.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	ps, err := participantsOf(ctx, c.db, s.ID)
	if err != nil {
		return nil, game.Upstream(err, "failed to load players")
	}
	next, err := game.Next(s.State(), game.TriggerAdvance, game.Limits{Participants: len(ps), Rounds: s.RoundCount})
	if err != nil {
		return nil, err
	}

	// scored only together with a successful index move; a lost move leaves it to reveal
	var sub *models.Submission
	if s.Status != game.PhaseScores {
		sub, err = c.currentSubmission(ctx, s)
		if err != nil && !errors.Is(err, game.ErrSubmissionNotFound) {
			return nil, err
		}
	}

	from := s.Status
	var applied bool
	var prompts []game.Assignment
	var deltas game.Deltas
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if applied, err = casState(ctx, tx, s, next); err != nil || !applied {
			return err
		}
		if sub != nil {
			if deltas, err = scoreSubmissionTx(tx, sub); err != nil {
				return err
			}
		}
		if next.Phase == game.PhaseDrawing {
			prompts, err = c.assignPrompts(ctx, tx, s, ps)
		}
		return err
	})
	if err != nil {
		return nil, game.Upstream(err, "failed to advance game")
	}
	if !applied {
		// someone else advanced first; report where the session is now
		return c.latestSession(ctx, code)
	}
	if sub != nil {
		c.scored(sub, deltas)
	}

	c.logTransition(s, from)
	c.notifyPhase(ctx, s, prompts)
	return s, nil
}

// EndSession finishes the session from any phase.
func (c *Controller) EndSession(ctx context.Context, code string) (*models.Session, error) {
	s, err := c.activeSession(ctx, code)
	if err != nil {
		return nil, err
	}
	next, err := game.Next(s.State(), game.TriggerEnd, game.Limits{})
	if err != nil {
		return nil, err
	}

	res := c.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND status <> ?", s.ID, game.PhaseFinished).
		Updates(map[string]any{"status": next.Phase, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, game.Upstream(res.Error, "failed to end game")
	}
	if res.RowsAffected == 0 {
		return nil, game.ErrSessionNotFound
	}

	from := s.Status
	s.Status = next.Phase
	c.logger.Info("Game ended", zap.String("session", s.ID), zap.String("code", s.Code), zap.String("from", from.String()))
	c.notifyPhase(ctx, s, nil)
	return s, nil
}
