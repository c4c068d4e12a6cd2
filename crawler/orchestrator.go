package crawler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"auctionwatch/config"
	"auctionwatch/httputil"
	"auctionwatch/models"
	"auctionwatch/services"
	"auctionwatch/storage"
)

// ErrRunActive is returned when a run is requested while another is still
// in flight. The orchestrator allows one active run per process; the
// randomized inter-request delay is the throttling mechanism, so parallel
// runs would defeat it.
var ErrRunActive = errors.New("crawl run already active")

// Orchestrator drives crawl runs: fetch and extract across a bounded page
// range, then hand the aggregated items to the listing pipeline. Every run
// is recorded in the operational store with its aggregate counts.
type Orchestrator struct {
	cfg      *config.Config
	ops      *storage.SQLiteStore
	listings *services.ListingService
	clients  *httputil.Clients
	running  atomic.Bool
}

func NewOrchestrator(cfg *config.Config, ops *storage.SQLiteStore, listings *services.ListingService, clients *httputil.Clients) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		ops:      ops,
		listings: listings,
		clients:  clients,
	}
}

// Run executes one crawl run over all configured sites. Only one run may
// be active at a time; concurrent calls get ErrRunActive.
func (o *Orchestrator) Run(ctx context.Context, pages int) error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrRunActive
	}
	defer o.running.Store(false)

	if pages <= 0 {
		pages = o.cfg.Crawler.Pages
	}

	var firstErr error
	for siteID := range o.cfg.Sites {
		if err := o.runSite(ctx, siteID, pages); err != nil {
			log.Printf("run: site %s failed: %v", siteID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// IsRunning reports whether a crawl run is currently active.
func (o *Orchestrator) IsRunning() bool {
	return o.running.Load()
}

func (o *Orchestrator) runSite(ctx context.Context, siteID string, pages int) (err error) {
	siteCfg, ok := o.cfg.Sites[siteID]
	if !ok {
		return fmt.Errorf("unknown site: %s", siteID)
	}

	run := &models.CrawlRun{
		RunToken:  uuid.NewString(),
		SourceID:  siteID,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
		Pages:     pages,
	}
	runID, opsErr := o.ops.CreateRun(run)
	if opsErr != nil {
		log.Printf("run: could not create run record: %v", opsErr)
	} else {
		run.ID = runID
	}

	// The fetch session lives for exactly one run.
	fetcher := NewFetcher(o.clients.Scraping, o.cfg.UserAgent,
		time.Duration(siteCfg.DelayMinMS)*time.Millisecond,
		time.Duration(siteCfg.DelayMaxMS)*time.Millisecond)
	source := NewSource(siteCfg, fetcher)

	defer func() {
		fetcher.Close()

		now := time.Now()
		run.FinishedAt = &now
		if err != nil {
			run.Status = models.RunStatusFailed
			run.ErrorMessage = err.Error()
		} else {
			run.Status = models.RunStatusCompleted
		}
		if run.ID != 0 {
			if updateErr := o.ops.UpdateRun(run); updateErr != nil {
				log.Printf("run: could not update run record: %v", updateErr)
			}
			if statsErr := o.ops.UpdateSiteStats(run); statsErr != nil {
				log.Printf("run: could not update site stats: %v", statsErr)
			}
		}
	}()

	o.log(run, models.LogLevelInfo, fmt.Sprintf("starting crawl for %s (%d pages)", source.Name(), pages))

	items, crawlErr := source.Crawl(ctx, pages)
	if crawlErr != nil {
		o.log(run, models.LogLevelError, fmt.Sprintf("crawl aborted: %v", crawlErr))
		run.ErrorsCount++
		return crawlErr
	}

	stats := o.listings.ProcessItems(ctx, items)
	run.TotalItems = stats.TotalItems
	run.NewItems = stats.NewItems
	run.DuplicateItems = stats.DuplicateItems
	run.MatchedItems = stats.MatchedItems
	run.AlertsSent = stats.AlertsSent
	run.ErrorsCount += stats.Errors

	o.log(run, models.LogLevelInfo, "completed: "+string(stats.ToJSON()))

	return nil
}

func (o *Orchestrator) log(run *models.CrawlRun, level models.LogLevel, message string) {
	log.Printf("[%s] %s: %s", level, run.SourceID, message)
	if run.ID != 0 {
		if err := o.ops.Log(&run.ID, level, message, run.SourceID); err != nil {
			log.Printf("run: could not write run log: %v", err)
		}
	}
}
