package actions

import (
	"context"
	"errors"
	"strings"

	"doodlebluff/bluff/broadcast"
	"doodlebluff/database"
	"doodlebluff/internal/game"
	"doodlebluff/models"

	"gorm.io/gorm"
)

// ParticipantEvent is the payload of the *-submitted progress events.
type ParticipantEvent struct {
	ParticipantID string `json:"participantId"`
}

// SubmitDrawing saves a player's drawing for the round together with its original caption. A repeated
// save for the same round is accepted without changing the stored drawing. Once every player has drawn,
// the session moves on to guessing.
func (c *Controller) SubmitDrawing(ctx context.Context, code string, req models.DrawingRequest) error {
	if req.ParticipantID == "" || req.ImageData == "" {
		return game.ErrMissingField
	}
	s, err := c.activeSession(ctx, code)
	if err != nil {
		return err
	}
	p, err := c.member(ctx, s, req.ParticipantID)
	if err != nil {
		return err
	}

	round := req.Round
	if round == 0 {
		round = s.CurrentRound
	}

	_, err = c.submissionBy(ctx, s.ID, p.ID, round)
	switch {
	case err == nil:
	case errors.Is(err, game.ErrSubmissionNotFound):
		if s.Status != game.PhaseDrawing {
			return game.ErrInvalidPhase
		}
		if round != s.CurrentRound {
			return game.ErrStaleTarget
		}
		created, err := c.insertSubmission(ctx, s, p, round, req)
		if err != nil {
			return err
		}
		if created {
			c.notify(ctx, s, broadcast.EventDrawingSubmitted, ParticipantEvent{ParticipantID: p.ID})
		}
	default:
		return err
	}

	if round != s.CurrentRound {
		return nil
	}
	return c.checkDrawingQuorum(ctx, s)
}

func (c *Controller) insertSubmission(ctx context.Context, s *models.Session, p *models.Participant, round int, req models.DrawingRequest) (bool, error) {
	prompt := strings.TrimSpace(req.PromptText)
	if prompt == "" {
		prompt = p.Prompt
	}
	if prompt == "" {
		prompt = game.FallbackPrompt
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := &models.Submission{
			SessionID:  s.ID,
			AuthorID:   p.ID,
			Round:      round,
			PromptText: prompt,
			ImageData:  req.ImageData,
		}
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		return tx.Create(&models.Caption{
			SubmissionID: sub.ID,
			AuthorID:     p.ID,
			Text:         prompt,
			Original:     true,
		}).Error
	})
	if database.IsUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, game.Upstream(err, "failed to save drawing")
	}
	return true, nil
}

func (c *Controller) checkDrawingQuorum(ctx context.Context, s *models.Session) error {
	if s.Status != game.PhaseDrawing {
		return nil
	}
	total, err := c.participantCount(ctx, s)
	if err != nil {
		return err
	}
	var authors int64
	if err := c.db.WithContext(ctx).Model(&models.Submission{}).
		Where("session_id = ? AND round = ?", s.ID, s.CurrentRound).
		Distinct("author_id").
		Count(&authors).Error; err != nil {
		return game.Upstream(err, "failed to count drawings")
	}
	if !game.QuorumReached(int(authors), game.DrawingQuorum(total)) {
		return nil
	}
	_, err = c.fire(ctx, s, game.TriggerDrawingsComplete, game.Limits{Participants: total, Rounds: s.RoundCount})
	return err
}
