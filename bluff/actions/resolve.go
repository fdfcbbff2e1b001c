package actions

import (
	"context"
	"errors"

	"doodlebluff/database"
	"doodlebluff/internal/game"
	"doodlebluff/models"

	"gorm.io/gorm"
)

// activeSession returns the newest session for code that is not finished.
func (c *Controller) activeSession(ctx context.Context, code string) (*models.Session, error) {
	var s models.Session
	err := c.db.WithContext(ctx).
		Where("code = ? AND status <> ?", code, game.PhaseFinished).
		Order("created_at DESC").
		First(&s).Error
	if database.IsNotFound(err) {
		return nil, game.ErrSessionNotFound
	}
	if err != nil {
		return nil, game.Upstream(err, "failed to load game")
	}
	return &s, nil
}

// latestSession prefers an active session and falls back to the newest finished one.
func (c *Controller) latestSession(ctx context.Context, code string) (*models.Session, error) {
	s, err := c.activeSession(ctx, code)
	if !errors.Is(err, game.ErrSessionNotFound) {
		return s, err
	}
	var finished models.Session
	err = c.db.WithContext(ctx).Where("code = ?", code).Order("created_at DESC").First(&finished).Error
	if database.IsNotFound(err) {
		return nil, game.ErrSessionNotFound
	}
	if err != nil {
		return nil, game.Upstream(err, "failed to load game")
	}
	return &finished, nil
}

// member loads participantID and checks it belongs to s.
func (c *Controller) member(ctx context.Context, s *models.Session, participantID string) (*models.Participant, error) {
	var p models.Participant
	err := c.db.WithContext(ctx).Where("id = ?", participantID).First(&p).Error
	if database.IsNotFound(err) {
		return nil, game.ErrNotInSession
	}
	if err != nil {
		return nil, game.Upstream(err, "failed to load player")
	}
	if p.SessionID != s.ID {
		return nil, game.ErrNotInSession
	}
	return &p, nil
}

func participantsOf(ctx context.Context, db *gorm.DB, sessionID string) ([]models.Participant, error) {
	var ps []models.Participant
	err := db.WithContext(ctx).Where("session_id = ?", sessionID).Order("join_order").Find(&ps).Error
	return ps, err
}

func countParticipants(ctx context.Context, db *gorm.DB, sessionID string) (int, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Participant{}).Where("session_id = ?", sessionID).Count(&n).Error
	return int(n), err
}

func (c *Controller) participantCount(ctx context.Context, s *models.Session) (int, error) {
	n, err := countParticipants(ctx, c.db, s.ID)
	if err != nil {
		return 0, game.Upstream(err, "failed to count players")
	}
	return n, nil
}

// currentSubmission returns the drawing at the presentation index of the current round.
func (c *Controller) currentSubmission(ctx context.Context, s *models.Session) (*models.Submission, error) {
	var author models.Participant
	err := c.db.WithContext(ctx).
		Where("session_id = ? AND join_order = ?", s.ID, s.CurrentIndex).
		First(&author).Error
	if database.IsNotFound(err) {
		return nil, game.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, game.Upstream(err, "failed to load drawing")
	}
	return c.submissionBy(ctx, s.ID, author.ID, s.CurrentRound)
}

func (c *Controller) submissionBy(ctx context.Context, sessionID, authorID string, round int) (*models.Submission, error) {
	var sub models.Submission
	err := c.db.WithContext(ctx).
		Where("session_id = ? AND author_id = ? AND round = ?", sessionID, authorID, round).
		First(&sub).Error
	if database.IsNotFound(err) {
		return nil, game.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, game.Upstream(err, "failed to load drawing")
	}
	return &sub, nil
}

// sessionSubmission loads a submission by id and checks it belongs to s.
func (c *Controller) sessionSubmission(ctx context.Context, s *models.Session, id string) (*models.Submission, error) {
	var sub models.Submission
	err := c.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error
	if database.IsNotFound(err) || (err == nil && sub.SessionID != s.ID) {
		return nil, game.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, game.Upstream(err, "failed to load drawing")
	}
	return &sub, nil
}

// artistOrder returns the join order of the artist of sub, which is its presentation index.
func (c *Controller) artistOrder(ctx context.Context, sub *models.Submission) (int, error) {
	var author models.Participant
	if err := c.db.WithContext(ctx).Where("id = ?", sub.AuthorID).First(&author).Error; err != nil {
		return 0, game.Upstream(err, "failed to load artist")
	}
	return author.JoinOrder, nil
}

// isCurrent reports whether sub is the drawing being presented.
func (c *Controller) isCurrent(ctx context.Context, s *models.Session, sub *models.Submission) (bool, error) {
	if sub.Round != s.CurrentRound {
		return false, nil
	}
	order, err := c.artistOrder(ctx, sub)
	if err != nil {
		return false, err
	}
	return order == s.CurrentIndex, nil
}
