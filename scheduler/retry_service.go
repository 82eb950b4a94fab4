package scheduler

import (
	"log"
	"time"

	"pricewatch/models"
	"pricewatch/repository"
)

// RetryService periodically re-attempts watches whose upstream fetch failed,
// honoring the per-watch backoff schedule.
type RetryService struct {
	watchRepo   *repository.WatchRepository
	refreshFunc RefreshFunc
	interval    time.Duration
	stopChan    chan bool
}

func NewRetryService(refreshFunc RefreshFunc) *RetryService {
	return &RetryService{
		watchRepo:   repository.NewWatchRepository(),
		refreshFunc: refreshFunc,
		interval:    5 * time.Minute,
		stopChan:    make(chan bool),
	}
}

// Start starts the retry service
func (rs *RetryService) Start() {
	log.Println("Starting retry service...")

	go func() {
		ticker := time.NewTicker(rs.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rs.processRetries()
			case <-rs.stopChan:
				log.Println("Retry service stopped")
				return
			}
		}
	}()
}

// Stop stops the retry service
func (rs *RetryService) Stop() {
	close(rs.stopChan)
}

// processRetries re-checks watches that are due for another attempt
func (rs *RetryService) processRetries() {
	watches, err := rs.watchRepo.GetWatchesForRetry()
	if err != nil {
		log.Printf("Failed to get watches for retry: %v", err)
		return
	}

	if len(watches) == 0 {
		return
	}

	log.Printf("Processing %d watches for retry", len(watches))

	for _, watch := range watches {
		if !watch.ShouldRetry() {
			continue
		}

		log.Printf("Retrying snapshot refresh for %s (attempt %d/5)", watch.Name, watch.RetryCount+1)

		snap, err := rs.refreshFunc(watch.ID)
		if err != nil {
			log.Printf("Retry failed for %s: %v", watch.Name, err)
			if markErr := rs.watchRepo.MarkCheckFailed(watch.ID); markErr != nil {
				log.Printf("Failed to mark retry as failed: %v", markErr)
			}
			continue
		}

		log.Printf("Retry successful for %s", watch.Name)

		if markErr := rs.watchRepo.MarkCheckSuccess(watch.ID); markErr != nil {
			log.Printf("Failed to mark retry as successful: %v", markErr)
		}

		if err := rs.watchRepo.UpdateSnapshot(watch.ID, snap); err != nil {
			log.Printf("Failed to update snapshot after retry: %v", err)
			continue
		}

		if snap != nil {
			if err := rs.watchRepo.AddSnapshotHistory(models.NewSnapshotRecord(watch.ID, snap)); err != nil {
				log.Printf("Failed to add snapshot history after retry: %v", err)
			}
		}
	}
}
