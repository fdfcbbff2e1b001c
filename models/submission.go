package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission is one drawing for one round.
type Submission struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID  string    `gorm:"size:36;not null;uniqueIndex:idx_submission_author_round" json:"sessionId"`
	AuthorID   string    `gorm:"size:36;not null;uniqueIndex:idx_submission_author_round" json:"authorId"`
	Round      int       `gorm:"not null;uniqueIndex:idx_submission_author_round" json:"round"`
	PromptText string    `gorm:"size:255;not null" json:"-"`
	ImageData  string    `gorm:"type:text;not null" json:"imageData"`
	Scored     bool      `gorm:"not null;default:false" json:"scored"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Caption is a title attached to a submission: the real prompt when Original, otherwise a decoy.
// One caption per (submission, author) covers both the single original and one decoy per player.
type Caption struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	SubmissionID string    `gorm:"size:36;not null;uniqueIndex:idx_caption_submission_author" json:"submissionId"`
	AuthorID     string    `gorm:"size:36;not null;uniqueIndex:idx_caption_submission_author" json:"authorId"`
	Text         string    `gorm:"size:255;not null" json:"text"`
	Original     bool      `gorm:"not null;default:false" json:"isOriginal"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (c *Caption) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Ballot is a vote. SubmissionID is copied from the caption so the store can reject a second vote
// by the same voter on the same submission.
type Ballot struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	CaptionID    string    `gorm:"size:36;not null;index" json:"captionId"`
	SubmissionID string    `gorm:"size:36;not null;uniqueIndex:idx_ballot_submission_voter" json:"submissionId"`
	VoterID      string    `gorm:"size:36;not null;uniqueIndex:idx_ballot_submission_voter" json:"voterId"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (b *Ballot) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
