// Package backup periodically snapshots the JSON data directory on a
// cron schedule.
package backup

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Snapshotter copies the current data files into a destination directory.
type Snapshotter interface {
	Snapshot(dst string) error
}

// Scheduler runs snapshots on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

// NewScheduler registers a snapshot job. spec is a standard 5-field cron
// expression; each run writes to <baseDir>/<UTC timestamp>/.
func NewScheduler(spec string, src Snapshotter, baseDir string, log *logrus.Logger) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		dst := filepath.Join(baseDir, time.Now().UTC().Format("20060102T150405"))
		if err := src.Snapshot(dst); err != nil {
			log.Errorf("Backup to %s failed: %v", dst, err)
			return
		}
		log.Infof("Backup written to %s", dst)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule backup: %w", err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

// Start begins running scheduled snapshots.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
