package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"auctionwatch/models"
	"auctionwatch/storage"
)

// ListingService runs the dedup-match-alert pipeline over scraped items.
type ListingService struct {
	store storage.Store
	match *MatchService
	alert *AlertService
}

func NewListingService(store storage.Store, match *MatchService, alert *AlertService) *ListingService {
	return &ListingService{
		store: store,
		match: match,
		alert: alert,
	}
}

// ProcessResult contains the outcome of processing a single scraped item.
type ProcessResult struct {
	Listing       *models.Listing
	IsNew         bool
	IsDuplicate   bool
	MatchedUsers  []string
	AlertsCreated int
}

// ProcessItems deduplicates, stores, matches, and alerts for a batch of
// scraped items. The keyword reverse index is built once for the whole
// batch. A failure on one item is logged and counted; the rest of the
// batch still proceeds.
func (s *ListingService) ProcessItems(ctx context.Context, items []models.ScrapedItem) *ProcessStats {
	stats := &ProcessStats{TotalItems: len(items)}

	index, err := s.match.BuildIndex(ctx)
	if err != nil {
		log.Printf("pipeline: keyword index build failed, matching disabled for this run: %v", err)
		index = nil
	}

	for i := range items {
		result, err := s.ProcessItem(ctx, &items[i], index)
		if err != nil {
			log.Printf("pipeline: item failed (%s): %v", items[i].URL, err)
			stats.Errors++
			continue
		}
		stats.Aggregate(result)
	}

	return stats
}

// ProcessItem handles one scraped item: URL dedup check, insert when
// novel, then matching and alert creation. A nil index skips matching.
func (s *ListingService) ProcessItem(ctx context.Context, item *models.ScrapedItem, index *KeywordIndex) (*ProcessResult, error) {
	existing, err := s.store.GetListingByURL(ctx, item.URL)
	if err != nil {
		return nil, fmt.Errorf("dedup check: %w", err)
	}
	if existing != nil {
		return &ProcessResult{Listing: existing, IsDuplicate: true}, nil
	}

	listing := &models.Listing{
		Title:          item.Title,
		AppraisalValue: item.AppraisalValue,
		BidDate:        item.BidDate,
		URL:            item.URL,
		KeywordTags:    item.Tags,
		SourceSite:     item.SourceSite,
		CreatedAt:      time.Now(),
	}
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}

	result := &ProcessResult{Listing: listing, IsNew: true}
	if index == nil {
		return result, nil
	}

	result.MatchedUsers = index.Match(listing.Title, listing.KeywordTags)
	for _, userID := range result.MatchedUsers {
		created, err := s.alert.CreateForMatch(ctx, userID, listing)
		if err != nil {
			log.Printf("pipeline: alert failed for user %s, listing %d: %v", userID, listing.ID, err)
			continue
		}
		if created {
			result.AlertsCreated++
		}
	}

	return result, nil
}

// ProcessStats tracks aggregate counts for one crawl run.
type ProcessStats struct {
	TotalItems     int
	NewItems       int
	DuplicateItems int
	MatchedItems   int
	AlertsSent     int
	Errors         int
}

// Aggregate adds one ProcessResult to the stats.
func (s *ProcessStats) Aggregate(r *ProcessResult) {
	if r.IsNew {
		s.NewItems++
	}
	if r.IsDuplicate {
		s.DuplicateItems++
	}
	if len(r.MatchedUsers) > 0 {
		s.MatchedItems++
	}
	s.AlertsSent += r.AlertsCreated
}

// ToJSON returns the stats as JSON metadata for run records.
func (s *ProcessStats) ToJSON() json.RawMessage {
	data, _ := json.Marshal(map[string]int{
		"total_items":     s.TotalItems,
		"new_items":       s.NewItems,
		"duplicate_items": s.DuplicateItems,
		"matched_items":   s.MatchedItems,
		"alerts_sent":     s.AlertsSent,
		"errors":          s.Errors,
	})
	return data
}
