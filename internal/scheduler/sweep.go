// Package scheduler periodically sweeps for received files and hands them
// to the task queue. The conditional claim in the pipeline makes overlapping
// sweeps safe; the scheduler additionally skips a sweep while one is active.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bordereaux/internal/database"
	"github.com/mrlokans/bordereaux/internal/database/files"
	"github.com/mrlokans/bordereaux/internal/entities"
	"github.com/mrlokans/bordereaux/internal/tasks"
)

// SweepScheduler enqueues one processing task per received file on a cron
// schedule.
type SweepScheduler struct {
	filesRepo  *files.Repository
	taskClient *tasks.Client
	schedule   string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSweeping bool
	cancelFunc context.CancelFunc
}

// NewSweepScheduler creates a new scheduler instance.
func NewSweepScheduler(db *database.Database, taskClient *tasks.Client, schedule string) *SweepScheduler {
	return &SweepScheduler{
		filesRepo:  files.NewRepository(db.DB),
		taskClient: taskClient,
		schedule:   schedule,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep job with '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("File sweep scheduler: started with schedule '%s'", s.schedule)

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep to finish.
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("File sweep scheduler: stopped")
}

// RunNow triggers an immediate sweep.
func (s *SweepScheduler) RunNow() {
	go s.runSweep()
}

// IsRunning returns whether the scheduler is active.
func (s *SweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur.
func (s *SweepScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSweep enqueues a processing task for every file waiting in received.
func (s *SweepScheduler) runSweep() {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		log.Printf("File sweep: skipped (already sweeping)")
		return
	}
	s.isSweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	pending, err := s.filesRepo.ListByStatus(entities.StatusReceived)
	if err != nil {
		log.Printf("File sweep: failed to list received files: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	log.Printf("File sweep: enqueueing %d file(s)", len(pending))
	enqueued := 0
	for _, file := range pending {
		if _, err := s.taskClient.Add(tasks.ProcessFileTask{FileID: file.ID}).Save(); err != nil {
			log.Printf("File sweep: failed to enqueue file %d: %v", file.ID, err)
			continue
		}
		enqueued++
	}
	log.Printf("File sweep: enqueued %d of %d file(s)", enqueued, len(pending))
}
