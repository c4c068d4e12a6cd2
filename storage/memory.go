package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"auctionwatch/models"
)

// MemoryStore is a mapping-backed Store for running without a configured
// database. Selected with STORE=memory; also used by tests.
type MemoryStore struct {
	mu sync.RWMutex

	listings map[int64]models.Listing
	byURL    map[string]int64
	keywords map[int64]models.Keyword
	alerts   map[int64]models.Alert

	nextListingID int64
	nextKeywordID int64
	nextAlertID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listings:      make(map[int64]models.Listing),
		byURL:         make(map[string]int64),
		keywords:      make(map[int64]models.Keyword),
		alerts:        make(map[int64]models.Alert),
		nextListingID: 1,
		nextKeywordID: 1,
		nextAlertID:   1,
	}
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// =============================================================================
// Listings
// =============================================================================

func (s *MemoryStore) CreateListing(ctx context.Context, l *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	l.ID = s.nextListingID
	s.nextListingID++
	s.listings[l.ID] = *l
	if _, ok := s.byURL[l.URL]; !ok {
		s.byURL[l.URL] = l.ID
	}
	return nil
}

func (s *MemoryStore) GetListingByURL(ctx context.Context, url string) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byURL[url]
	if !ok {
		return nil, nil
	}
	l := s.listings[id]
	return &l, nil
}

func (s *MemoryStore) GetListingByID(ctx context.Context, id int64) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *MemoryStore) ListRecentListings(ctx context.Context, limit int) ([]models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listings := make([]models.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		listings = append(listings, l)
	}
	sortListingsDesc(listings)
	if limit > 0 && len(listings) > limit {
		listings = listings[:limit]
	}
	return listings, nil
}

func (s *MemoryStore) SearchListings(ctx context.Context, keyword string, limit int) ([]models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(keyword)
	var matched []models.Listing
	for _, l := range s.listings {
		if strings.Contains(strings.ToLower(l.Title), lower) || containsString(l.KeywordTags, keyword) {
			matched = append(matched, l)
		}
	}
	sortListingsDesc(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func sortListingsDesc(listings []models.Listing) {
	sort.Slice(listings, func(i, j int) bool {
		if listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].ID > listings[j].ID
		}
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// Keywords
// =============================================================================

func (s *MemoryStore) CreateKeyword(ctx context.Context, k *models.Keyword) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now()
	}
	k.ID = s.nextKeywordID
	s.nextKeywordID++
	s.keywords[k.ID] = *k
	return nil
}

func (s *MemoryStore) GetKeywordByID(ctx context.Context, id int64) (*models.Keyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.keywords[id]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (s *MemoryStore) ListKeywordsByUser(ctx context.Context, userID string) ([]models.Keyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keywords []models.Keyword
	for _, k := range s.keywords {
		if k.UserID == userID {
			keywords = append(keywords, k)
		}
	}
	sort.Slice(keywords, func(i, j int) bool { return keywords[i].ID > keywords[j].ID })
	return keywords, nil
}

func (s *MemoryStore) ListAllKeywords(ctx context.Context) ([]models.Keyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keywords := make([]models.Keyword, 0, len(s.keywords))
	for _, k := range s.keywords {
		keywords = append(keywords, k)
	}
	sort.Slice(keywords, func(i, j int) bool { return keywords[i].ID < keywords[j].ID })
	return keywords, nil
}

func (s *MemoryStore) DeleteKeyword(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keywords[id]; !ok {
		return false, nil
	}
	delete(s.keywords, id)
	return true, nil
}

// =============================================================================
// Alerts
// =============================================================================

func (s *MemoryStore) CreateAlert(ctx context.Context, a *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.SentAt.IsZero() {
		a.SentAt = time.Now()
	}
	a.ID = s.nextAlertID
	s.nextAlertID++
	s.alerts[a.ID] = *a
	return nil
}

func (s *MemoryStore) GetAlertByID(ctx context.Context, id int64) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.alerts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *MemoryStore) ListAlertsByUser(ctx context.Context, userID string, limit int) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var alerts []models.Alert
	for _, a := range s.alerts {
		if a.UserID == userID {
			alerts = append(alerts, a)
		}
	}
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].SentAt.Equal(alerts[j].SentAt) {
			return alerts[i].ID > alerts[j].ID
		}
		return alerts[i].SentAt.After(alerts[j].SentAt)
	})
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

func (s *MemoryStore) HasAlert(ctx context.Context, userID string, listingID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.alerts {
		if a.UserID == userID && a.ListingID == listingID {
			return true, nil
		}
	}
	return false, nil
}
