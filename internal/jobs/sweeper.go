// Package jobs holds the background maintenance tasks.
package jobs

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	SweepSchedule = "@every 15m"
	TempMaxAge    = time.Hour

	tempPrefix = "upload-"
)

// SweepTempUploads removes spooled uploads older than maxAge from dir and
// returns how many were deleted. Uploads are normally removed inline; this
// catches files left by a crash mid-request.
func SweepTempUploads(dir string, maxAge time.Duration, now time.Time) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		zap.L().Warn("temp sweep: read dir failed", zap.String("dir", dir), zap.Error(err))
		return 0
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !os.IsNotExist(err) {
			zap.L().Warn("temp sweep: remove failed", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		zap.L().Info("🧹 stale uploads removed", zap.Int("count", removed), zap.String("dir", dir))
	}
	return removed
}

// Start schedules the sweeper. Stop the returned scheduler on shutdown.
func Start(uploadDir string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(SweepSchedule, func() {
		SweepTempUploads(uploadDir, TempMaxAge, time.Now())
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
