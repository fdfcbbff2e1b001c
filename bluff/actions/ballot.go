package actions

import (
	"context"
	"errors"

	"doodlebluff/bluff/broadcast"
	"doodlebluff/database"
	"doodlebluff/internal/game"
	"doodlebluff/models"
)

// SubmitBallot records a vote for one caption of a drawing already presented this round. The store
// rejects a second vote by the same player on the same drawing. Votes on a drawing that was already
// scored are kept but never rescored.
func (c *Controller) SubmitBallot(ctx context.Context, code string, req models.BallotRequest) error {
	if req.ParticipantID == "" || req.CaptionID == "" {
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

	var caption models.Caption
	err = c.db.WithContext(ctx).Where("id = ?", req.CaptionID).First(&caption).Error
	if database.IsNotFound(err) {
		return game.ErrCaptionNotFound
	}
	if err != nil {
		return game.Upstream(err, "failed to load caption")
	}
	sub, err := c.sessionSubmission(ctx, s, caption.SubmissionID)
	if errors.Is(err, game.ErrSubmissionNotFound) {
		return game.ErrCaptionNotFound
	}
	if err != nil {
		return err
	}
	if sub.AuthorID == p.ID {
		return game.ErrOwnSubmission
	}
	if sub.Round != s.CurrentRound {
		return game.ErrStaleTarget
	}
	if !s.Status.AcceptsBallots() {
		return game.ErrInvalidPhase
	}
	order, err := c.artistOrder(ctx, sub)
	if err != nil {
		return err
	}
	if order > s.CurrentIndex {
		// not presented yet
		return game.ErrStaleTarget
	}
	current := order == s.CurrentIndex
	if current && s.Status == game.PhaseGuessing {
		return game.Precondition("voting has not started yet")
	}

	err = c.db.WithContext(ctx).Create(&models.Ballot{
		CaptionID:    caption.ID,
		SubmissionID: sub.ID,
		VoterID:      p.ID,
	}).Error
	if database.IsUniqueViolation(err) {
		return game.ErrDuplicateVote
	}
	if err != nil {
		return game.Upstream(err, "failed to save vote")
	}
	c.notify(ctx, s, broadcast.EventVoteSubmitted, ParticipantEvent{ParticipantID: p.ID})

	if !current || s.Status != game.PhaseVoting {
		return nil
	}
	return c.checkBallotQuorum(ctx, s, sub)
}

func (c *Controller) checkBallotQuorum(ctx context.Context, s *models.Session, sub *models.Submission) error {
	total, err := c.participantCount(ctx, s)
	if err != nil {
		return err
	}
	var ballots int64
	if err := c.db.WithContext(ctx).Model(&models.Ballot{}).
		Where("submission_id = ?", sub.ID).
		Count(&ballots).Error; err != nil {
		return game.Upstream(err, "failed to count votes")
	}
	if !game.QuorumReached(int(ballots), game.AuthorExcludedQuorum(total)) {
		return nil
	}
	_, err = c.fire(ctx, s, game.TriggerBallotsComplete, game.Limits{Participants: total, Rounds: s.RoundCount})
	return err
}
