package models

// Prompt is one entry of the drawing prompt pool.
type Prompt struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Text string `gorm:"size:255;not null;uniqueIndex" json:"text"`
}
