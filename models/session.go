package models

import (
	"time"

	"doodlebluff/internal/game"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is one game instance. Only the Phase Controller moves Status, CurrentRound and CurrentIndex.
type Session struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Code         string     `gorm:"size:8;not null;index" json:"code"`
	Status       game.Phase `gorm:"size:16;not null;default:'lobby';index" json:"status"`
	CurrentRound int        `gorm:"not null;default:0" json:"currentRound"`
	CurrentIndex int        `gorm:"not null;default:0" json:"currentIndex"`
	RoundCount   int        `gorm:"not null;default:1" json:"roundCount"`
	HostID       string     `gorm:"size:64;not null" json:"hostId"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"index" json:"updatedAt"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// State returns the phase/round/index triple the transition table works on.
func (s *Session) State() game.State {
	return game.State{Phase: s.Status, Round: s.CurrentRound, Index: s.CurrentIndex}
}
