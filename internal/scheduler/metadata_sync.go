// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/hardbound/bookshelf/internal/entities"
)

// GapLister finds books whose bibliographic fields are incomplete.
type GapLister interface {
	GetBooksMissingMetadata(ctx context.Context) ([]entities.Book, error)
}

// RefreshEnqueuer hands per-book refresh work to the task queue.
type RefreshEnqueuer interface {
	EnqueueRefresh(ctx context.Context, bookID uint) error
}

// MetadataSyncScheduler periodically sweeps the catalogue for books with
// metadata gaps and queues a provider refresh for each.
type MetadataSyncScheduler struct {
	store    GapLister
	enqueuer RefreshEnqueuer
	schedule string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

// NewMetadataSyncScheduler creates a new scheduler instance.
func NewMetadataSyncScheduler(store GapLister, enqueuer RefreshEnqueuer, schedule string) *MetadataSyncScheduler {
	return &MetadataSyncScheduler{
		store:    store,
		enqueuer: enqueuer,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the periodic sweep.
func (s *MetadataSyncScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule metadata sweep '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("Metadata sync scheduler started (schedule: %s)", s.schedule)
	return nil
}

// Stop halts the scheduler. Running jobs finish before Stop returns.
func (s *MetadataSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Println("Metadata sync scheduler stopped")
}

func (s *MetadataSyncScheduler) runSweep() {
	ctx := context.Background()

	candidates, err := s.store.GetBooksMissingMetadata(ctx)
	if err != nil {
		log.Printf("Metadata sweep failed to list candidates: %v", err)
		return
	}
	if len(candidates) == 0 {
		return
	}

	queued := 0
	for _, book := range candidates {
		if err := s.enqueuer.EnqueueRefresh(ctx, book.ID); err != nil {
			log.Printf("Metadata sweep failed to enqueue book %d: %v", book.ID, err)
			continue
		}
		queued++
	}
	log.Printf("Metadata sweep queued %d of %d candidate books", queued, len(candidates))
}
