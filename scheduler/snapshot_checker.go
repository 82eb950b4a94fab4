package scheduler

import (
	"log"

	"pricewatch/changedetection"
	"pricewatch/extract"
	"pricewatch/models"
	"pricewatch/repository"

	"github.com/robfig/cron/v3"
)

// SnapshotChecker periodically re-extracts commerce signals for every active
// watch from whatever state the change-detection service has captured.
type SnapshotChecker struct {
	cron         *cron.Cron
	watchRepo    *repository.WatchRepository
	client       *changedetection.Client
	schedule     string
	historyDepth int
}

func NewSnapshotChecker(client *changedetection.Client, schedule string, historyDepth int) *SnapshotChecker {
	return &SnapshotChecker{
		cron:         cron.New(cron.WithSeconds()),
		watchRepo:    repository.NewWatchRepository(),
		client:       client,
		schedule:     schedule,
		historyDepth: historyDepth,
	}
}

// Start starts the scheduled snapshot checking
func (sc *SnapshotChecker) Start() {
	_, err := sc.cron.AddFunc(sc.schedule, sc.checkAllWatches)
	if err != nil {
		log.Printf("Failed to schedule snapshot checker: %v", err)
		return
	}

	// Also run immediately on startup
	go sc.checkAllWatches()

	sc.cron.Start()
	log.Printf("Snapshot checker scheduled with %q", sc.schedule)
}

// Stop stops the scheduled snapshot checking
func (sc *SnapshotChecker) Stop() {
	if sc.cron != nil {
		sc.cron.Stop()
	}
}

// checkAllWatches refreshes snapshots for all active watches
func (sc *SnapshotChecker) checkAllWatches() {
	log.Println("Starting scheduled snapshot check for all tracked watches")

	watches, err := sc.watchRepo.GetActiveWatches()
	if err != nil {
		log.Printf("Failed to get tracked watches: %v", err)
		return
	}

	if len(watches) == 0 {
		log.Println("No watches to check")
		return
	}

	log.Printf("Checking snapshots for %d watches", len(watches))

	for _, watch := range watches {
		go sc.checkWatch(watch)
	}
}

// checkWatch refreshes the snapshot for a single watch. A failed details
// fetch is tolerated: extraction still runs over whatever history came back.
func (sc *SnapshotChecker) checkWatch(watch models.TrackedWatch) {
	log.Printf("Checking snapshot for: %s (%s)", watch.Name, watch.URL)

	details, detailsErr := sc.client.GetWatch(watch.WatchUUID)
	if detailsErr != nil {
		log.Printf("Failed to fetch details for %s: %v", watch.Name, detailsErr)
	}

	history, historyErr := sc.client.GetWatchHistory(watch.WatchUUID, sc.historyDepth)
	if historyErr != nil {
		log.Printf("Failed to fetch history for %s: %v", watch.Name, historyErr)
	}

	if detailsErr != nil && historyErr != nil {
		if err := sc.watchRepo.MarkCheckFailed(watch.ID); err != nil {
			log.Printf("Failed to mark check as failed for %s: %v", watch.Name, err)
		}
		return
	}

	if err := sc.watchRepo.MarkCheckSuccess(watch.ID); err != nil {
		log.Printf("Failed to mark check as successful for %s: %v", watch.Name, err)
	}

	snap := extract.ExtractPriceSnapshot(details, history)

	if err := sc.watchRepo.UpdateSnapshot(watch.ID, snap); err != nil {
		log.Printf("Failed to update snapshot for %s: %v", watch.Name, err)
		return
	}

	if snap == nil {
		log.Printf("No commerce signal for %s", watch.Name)
		return
	}

	if err := sc.watchRepo.AddSnapshotHistory(models.NewSnapshotRecord(watch.ID, snap)); err != nil {
		log.Printf("Failed to add snapshot history for %s: %v", watch.Name, err)
	}

	sc.logTransitions(watch, snap)
}

// logTransitions reports price and stock changes against the stored state
func (sc *SnapshotChecker) logTransitions(watch models.TrackedWatch, snap *models.PriceSnapshot) {
	if snap.HasPrice() {
		if watch.LastPrice.Valid && watch.LastPrice.String != *snap.Price {
			log.Printf("Price changed for %s: %s -> %s (%s)", watch.Name, watch.LastPrice.String, *snap.Price, snap.Context)
		} else if !watch.LastPrice.Valid {
			log.Printf("First price for %s: %s (%s)", watch.Name, *snap.Price, snap.Context)
		}
	}

	if watch.LastStock.Valid {
		was := models.StockOut
		if watch.LastStock.Bool {
			was = models.StockIn
		}
		if snap.StockState != models.StockUnknown && snap.StockState != was {
			log.Printf("Stock changed for %s: %s -> %s", watch.Name, was, snap.StockState)
		}
	}
}

// ManualCheck allows manual triggering of snapshot checks
func (sc *SnapshotChecker) ManualCheck() {
	log.Println("Manual snapshot check triggered")
	sc.checkAllWatches()
}
