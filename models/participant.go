package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participant is a joined player. Score is written only by the scoring step.
type Participant struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID   string    `gorm:"size:36;not null;uniqueIndex:idx_participant_device;uniqueIndex:idx_participant_order" json:"sessionId"`
	DeviceToken string    `gorm:"size:128;not null;uniqueIndex:idx_participant_device" json:"-"`
	Name        string    `gorm:"size:32;not null" json:"name"`
	Score       int       `gorm:"not null;default:0" json:"score"`
	JoinOrder   int       `gorm:"not null;uniqueIndex:idx_participant_order" json:"joinOrder"`
	Prompt      string    `gorm:"size:255" json:"-"` // prompt assigned for the current round
	CreatedAt   time.Time `json:"createdAt"`
}

func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
