package broadcast

import (
	"context"
	"encoding/json"
	"errors"

	"doodlebluff/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Journal records every event in the events table before handing it to next, so clients without a
// socket can catch up by polling.
type Journal struct {
	db   *gorm.DB
	next Publisher
}

func NewJournal(db *gorm.DB, next Publisher) *Journal {
	if next == nil {
		next = Nop{}
	}
	return &Journal{db: db, next: next}
}

func (j *Journal) Publish(ctx context.Context, ev Event) error {
	var journalErr error
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		journalErr = err
	} else {
		row := models.Event{SessionID: ev.SessionID, Name: ev.Name, Payload: datatypes.JSON(payload)}
		journalErr = j.db.WithContext(ctx).Create(&row).Error
	}
	return errors.Join(journalErr, j.next.Publish(ctx, ev))
}

// Since lists the events of a session with an id above after, oldest first.
func Since(ctx context.Context, db *gorm.DB, sessionID string, after uint, limit int) ([]models.Event, error) {
	var events []models.Event
	err := db.WithContext(ctx).
		Where("session_id = ? AND id > ?", sessionID, after).
		Order("id").
		Limit(limit).
		Find(&events).Error
	return events, err
}
