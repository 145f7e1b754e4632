package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/models"
	"github.com/robfig/cron"
	"gorm.io/gorm"
)

// DefaultRetention is how long system_logs rows are kept.
const DefaultRetention = 30 * 24 * time.Hour

// StartCleanup schedules a daily purge of system_logs rows older than
// retention. Call Stop on the returned scheduler during shutdown.
func StartCleanup(db *gorm.DB, retention time.Duration) (*cron.Cron, error) {
	c := cron.New()
	err := c.AddFunc("@daily", func() {
		deleted, err := Purge(db, time.Now().Add(-retention))
		if err != nil {
			slog.Error("log cleanup failed", "error", err)
		} else if deleted > 0 {
			slog.Info("log cleanup completed", "deleted", deleted)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// Purge deletes every log row recorded before cutoff.
func Purge(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
