package services

import (
	"context"
	"sort"
	"strings"

	"auctionwatch/models"
	"auctionwatch/storage"
)

// MatchService determines which users a new listing should alert.
type MatchService struct {
	store storage.Store
}

func NewMatchService(store storage.Store) *MatchService {
	return &MatchService{store: store}
}

// KeywordIndex is a reverse index from keyword text to the distinct users
// who registered it, built once per matching pass from the full keyword
// table. Duplicate (user, keyword) registrations collapse to one entry.
type KeywordIndex struct {
	owners map[string][]string
}

func (s *MatchService) BuildIndex(ctx context.Context) (*KeywordIndex, error) {
	keywords, err := s.store.ListAllKeywords(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]map[string]bool)
	for _, k := range keywords {
		if k.Keyword == "" {
			continue
		}
		if seen[k.Keyword] == nil {
			seen[k.Keyword] = make(map[string]bool)
		}
		seen[k.Keyword][k.UserID] = true
	}

	owners := make(map[string][]string, len(seen))
	for keyword, users := range seen {
		ids := make([]string, 0, len(users))
		for id := range users {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		owners[keyword] = ids
	}

	return &KeywordIndex{owners: owners}, nil
}

// Size returns the number of distinct keyword strings in the index.
func (idx *KeywordIndex) Size() int {
	return len(idx.owners)
}

// Match returns the deduplicated, sorted set of user ids whose keyword
// matches the listing. A keyword matches when it is a case-insensitive
// substring of the title, or an exact member of the derived tag set.
func (idx *KeywordIndex) Match(title string, itemTags []string) []string {
	titleLower := strings.ToLower(title)
	tagSet := make(map[string]bool, len(itemTags))
	for _, t := range itemTags {
		tagSet[t] = true
	}

	matched := make(map[string]bool)
	for keyword, owners := range idx.owners {
		if strings.Contains(titleLower, strings.ToLower(keyword)) || tagSet[keyword] {
			for _, id := range owners {
				matched[id] = true
			}
		}
	}

	users := make([]string, 0, len(matched))
	for id := range matched {
		users = append(users, id)
	}
	sort.Strings(users)
	return users
}

// FindMatchingUsers builds a fresh index and matches one listing against
// it. The crawl pipeline builds the index once per run instead; this is
// the one-off form.
func (s *MatchService) FindMatchingUsers(ctx context.Context, listing *models.Listing) ([]string, error) {
	index, err := s.BuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	return index.Match(listing.Title, listing.KeywordTags), nil
}

// MatchScore rates how strongly a listing matches one user's keywords:
// 1.0 per exact tag hit, 0.5 per title substring hit.
func MatchScore(listing *models.Listing, userKeywords []string) float64 {
	titleLower := strings.ToLower(listing.Title)
	tagSet := make(map[string]bool, len(listing.KeywordTags))
	for _, t := range listing.KeywordTags {
		tagSet[t] = true
	}

	score := 0.0
	for _, keyword := range userKeywords {
		switch {
		case tagSet[keyword]:
			score += 1.0
		case strings.Contains(titleLower, strings.ToLower(keyword)):
			score += 0.5
		}
	}
	return score
}
