package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event is the journal copy of a broadcast, read by clients that poll instead of holding a socket.
type Event struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SessionID string         `gorm:"size:36;not null;index" json:"-"`
	Name      string         `gorm:"size:32;not null" json:"name"`
	Payload   datatypes.JSON `gorm:"not null" json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}
