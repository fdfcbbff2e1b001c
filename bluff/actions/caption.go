package actions

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"doodlebluff/bluff/broadcast"
	"doodlebluff/database"
	"doodlebluff/internal/game"
	"doodlebluff/models"
)

// SubmitCaption stores a decoy title for the drawing being guessed. The artist may not caption their own
// drawing. When every other player has written one, voting opens.
func (c *Controller) SubmitCaption(ctx context.Context, code string, req models.CaptionRequest) error {
	text := strings.TrimSpace(req.Text)
	if req.ParticipantID == "" || req.SubmissionID == "" || text == "" {
		return game.ErrMissingField
	}
	if utf8.RuneCountInString(text) > maxCaptionLength {
		return game.Precondition(fmt.Sprintf("caption must be at most %d characters", maxCaptionLength))
	}

	s, err := c.activeSession(ctx, code)
	if err != nil {
		return err
	}
	p, err := c.member(ctx, s, req.ParticipantID)
	if err != nil {
		return err
	}
	sub, err := c.sessionSubmission(ctx, s, req.SubmissionID)
	if err != nil {
		return err
	}
	if sub.AuthorID == p.ID {
		return game.ErrOwnSubmission
	}
	current, err := c.isCurrent(ctx, s, sub)
	if err != nil {
		return err
	}

	var existing int64
	if err := c.db.WithContext(ctx).Model(&models.Caption{}).
		Where("submission_id = ? AND author_id = ?", sub.ID, p.ID).
		Count(&existing).Error; err != nil {
		return game.Upstream(err, "failed to load captions")
	}

	if existing == 0 {
		if !current {
			return game.ErrStaleTarget
		}
		if s.Status != game.PhaseGuessing {
			return game.ErrInvalidPhase
		}
		err := c.db.WithContext(ctx).Create(&models.Caption{
			SubmissionID: sub.ID,
			AuthorID:     p.ID,
			Text:         text,
		}).Error
		switch {
		case database.IsUniqueViolation(err):
		case err != nil:
			return game.Upstream(err, "failed to save caption")
		default:
			c.notify(ctx, s, broadcast.EventGuessSubmitted, ParticipantEvent{ParticipantID: p.ID})
		}
	}

	if !current || s.Status != game.PhaseGuessing {
		return nil
	}
	return c.checkCaptionQuorum(ctx, s, sub)
}

func (c *Controller) checkCaptionQuorum(ctx context.Context, s *models.Session, sub *models.Submission) error {
	total, err := c.participantCount(ctx, s)
	if err != nil {
		return err
	}
	var decoys int64
	if err := c.db.WithContext(ctx).Model(&models.Caption{}).
		Where("submission_id = ? AND original = ?", sub.ID, false).
		Distinct("author_id").
		Count(&decoys).Error; err != nil {
		return game.Upstream(err, "failed to count captions")
	}
	if !game.QuorumReached(int(decoys), game.AuthorExcludedQuorum(total)) {
		return nil
	}
	_, err = c.fire(ctx, s, game.TriggerCaptionsComplete, game.Limits{Participants: total, Rounds: s.RoundCount})
	return err
}
