package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"stockdash/internal/cache"
)

// Scheduler runs periodic housekeeping. The only job today is the cache
// sweep; fetches themselves stay strictly user-triggered.
type Scheduler struct {
	Cron  *cron.Cron
	Cache *cache.Cache
}

// New creates a Scheduler for the given cache.
func New(c *cache.Cache) *Scheduler {
	return &Scheduler{
		Cron:  cron.New(cron.WithSeconds()),
		Cache: c,
	}
}

// RegisterSweep schedules expired-entry eviction on the given cron spec.
func (s *Scheduler) RegisterSweep(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() {
		if n := s.Cache.Sweep(); n > 0 {
			log.Printf("[INFO] cache sweep dropped %d expired entries", n)
		}
	}); err != nil {
		return fmt.Errorf("register cache sweep: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}
