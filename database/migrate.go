package database

import (
	"doodlebluff/internal/game"
	"doodlebluff/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// activeCodeIndex keeps a join code unique among sessions that are not finished.
const activeCodeIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_active_code ON sessions (code) WHERE status <> 'finished'`

// AutoMigrate creates or updates every table and seeds the prompt pool.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Session{},
		&models.Participant{},
		&models.Submission{},
		&models.Caption{},
		&models.Ballot{},
		&models.Prompt{},
		&models.Event{},
	); err != nil {
		return err
	}
	if err := db.Exec(activeCodeIndex).Error; err != nil {
		return err
	}
	return SeedPrompts(db, game.DefaultPrompts)
}

// SeedPrompts inserts prompts that are not in the pool yet.
func SeedPrompts(db *gorm.DB, prompts []string) error {
	if len(prompts) == 0 {
		return nil
	}
	rows := make([]models.Prompt, 0, len(prompts))
	for _, p := range prompts {
		rows = append(rows, models.Prompt{Text: p})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
