// Package jobs schedules the background maintenance of the identity-mapping
// store: purging expired mappings and reconciling complaints that lost their
// mapping row (legacy data written before the two tables shared a
// transaction).
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"voisafe/backend/internal/obs"
	"voisafe/backend/internal/storage"
)

const (
	purgeSchedule     = "@hourly"
	reconcileSchedule = "@daily"

	jobTimeout = 5 * time.Minute
)

// Scheduler owns the cron runner for the maintenance sweeps.
type Scheduler struct {
	Cron    *cron.Cron
	Storage storage.Storage
}

// NewScheduler registers the maintenance jobs. Start must be called to run them.
func NewScheduler(s storage.Storage) (*Scheduler, error) {
	sched := &Scheduler{
		Cron:    cron.New(),
		Storage: s,
	}

	if _, err := sched.Cron.AddFunc(purgeSchedule, sched.purgeExpiredMappings); err != nil {
		return nil, err
	}
	if _, err := sched.Cron.AddFunc(reconcileSchedule, sched.reconcileMappings); err != nil {
		return nil, err
	}
	return sched, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("INFO: maintenance scheduler started")
}

// Stop blocks until any running job finishes.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("INFO: maintenance scheduler stopped")
}

// purgeExpiredMappings removes identity mappings whose retention TTL has
// passed, together with their access logs. The complaint rows stay — after a
// purge the complaint is permanently anonymous.
func (s *Scheduler) purgeExpiredMappings() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	purged, err := s.Storage.PurgeExpiredMappings(ctx, time.Now())
	if err != nil {
		log.Printf("ERROR: purging expired identity mappings: %v", err)
		return
	}
	if purged > 0 {
		obs.MappingsPurged.Add(float64(purged))
		log.Printf("INFO: purged %d expired identity mappings", purged)
	}
}

// reconcileMappings reports complaints without a mapping row. New filings
// write both rows in one transaction; anything this finds is either purged by
// TTL (expected) or legacy data worth a look.
func (s *Scheduler) reconcileMappings() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	orphans, err := s.Storage.FindUnmappedTrackingIDs(ctx)
	if err != nil {
		log.Printf("ERROR: reconciling identity mappings: %v", err)
		return
	}
	if len(orphans) == 0 {
		return
	}
	log.Printf("WARNING: %d complaints have no identity mapping (purged or legacy): %v", len(orphans), orphans)
}
