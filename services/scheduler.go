// services/scheduler.go
package services

import (
	"log"
	"time"

	"agent-arena/models"

	"github.com/go-co-op/gocron/v2"
)

// StartMaintenanceScheduler runs the engine's background sweeps: stale
// Pending matches get cancelled, completed matches missing an archive get
// re-enqueued, and the ranking table is periodically rebuilt from scratch.
func (s *MatchService) StartMaintenanceScheduler(stats *StatsService, pendingTTL time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: cancel Pending matches that sat idle past the TTL.
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var stale []models.Match
			cutoff := time.Now().Add(-pendingTTL)
			err := s.DB.Where("status = ? AND created_at < ?", models.MatchPending, cutoff).
				Find(&stale).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, m := range stale {
				if err := s.Cancel(m.ID); err != nil {
					log.Printf("[Scheduler] Failed to cancel stale match %s: %v", m.ID, err)
				} else {
					log.Printf("✅ Cancelled stale pending match: %s", m.Name)
				}
			}
		}),
	)

	// Every 5 minutes: retry archival for completed matches without one.
	_, _ = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			if s.ArchiveQueue == nil {
				return
			}
			var unarchived []models.Match
			err := s.DB.Where("status = ? AND archived_at IS NULL", models.MatchCompleted).
				Limit(50).Find(&unarchived).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, m := range unarchived {
				select {
				case s.ArchiveQueue <- m.ID:
				default:
					return // queue full, next sweep picks the rest up
				}
			}
		}),
	)

	// Hourly: full rank rebuild. The stats table is derived, so this also
	// repairs any drift.
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			if err := stats.RebuildAll(); err != nil {
				log.Printf("[Scheduler] Stats rebuild failed: %v", err)
			}
		}),
	)
}
