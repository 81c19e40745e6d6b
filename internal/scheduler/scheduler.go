package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ecosort/internal/store"
)

// Scheduler runs periodic store maintenance: pruning scan history past the
// retention window on a cron cadence.
type Scheduler struct {
	store     *store.Store
	schedule  cron.Schedule
	retention time.Duration

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a scheduler. retentionDays of 0 disables pruning entirely;
// scan history is kept forever unless the operator opts in.
func New(st *store.Store, cronExpr string, retentionDays int) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", cronExpr, err)
	}

	return &Scheduler{
		store:     st,
		schedule:  schedule,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}, nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	if s.retention <= 0 {
		log.Printf("scheduler: history retention disabled")
	}

	s.wg.Add(1)
	go s.run()
}

// Stop stops the scheduler and waits for a running maintenance pass
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
}

// run is the main scheduler loop
func (s *Scheduler) run() {
	defer s.wg.Done()

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.runMaintenance(time.Now())
		}
	}
}

// runMaintenance performs one retention pass.
func (s *Scheduler) runMaintenance(now time.Time) {
	if s.retention <= 0 {
		return
	}

	cutoff := now.Add(-s.retention)
	removed, err := s.store.PruneHistory(cutoff)
	if err != nil {
		log.Printf("scheduler: history prune failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("scheduler: pruned %d history events older than %v", removed, cutoff.Format(time.RFC3339))
	}
}
