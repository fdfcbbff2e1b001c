package utils

import (
	"time"

	"doodlebluff/internal/game"
	"doodlebluff/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CronCleaner starts the hourly sweep that finishes abandoned sessions and returns the scheduler so the
// caller can stop it.
func CronCleaner(db *gorm.DB, logger *zap.Logger, idle time.Duration) *cron.Cron {
	return scheduleSweep(db, logger, idle, sweepSchedule)
}

const sweepSchedule = "@hourly"

func scheduleSweep(db *gorm.DB, logger *zap.Logger, idle time.Duration, spec string) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		finished, err := FinishIdleSessions(db, time.Now().Add(-idle))
		if err != nil {
			logger.Error("Failed to finish idle sessions", zap.Error(err))
			return
		}
		if finished > 0 {
			logger.Info("Finished idle sessions", zap.Int64("sessions", finished))
		}
	})
	if err != nil {
		logger.Error("Failed to schedule idle session sweep", zap.String("schedule", spec), zap.Error(err))
	}

	c.Start()
	return c
}

// FinishIdleSessions marks every unfinished session untouched since cutoff as finished. Rows are kept.
func FinishIdleSessions(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Model(&models.Session{}).
		Where("status <> ? AND updated_at <= ?", game.PhaseFinished, cutoff).
		Updates(map[string]any{"status": game.PhaseFinished, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}
