package storage

import (
	"context"

	"auctionwatch/models"
)

// Store is the persistence surface used by the crawl pipeline and the API
// layer. Two implementations exist: PostgresStore for deployments and
// MemoryStore for local use without a configured database, selected by
// configuration.
type Store interface {
	// Listings. URLs are the dedup key, compared exactly.
	GetListingByURL(ctx context.Context, url string) (*models.Listing, error)
	CreateListing(ctx context.Context, listing *models.Listing) error
	GetListingByID(ctx context.Context, id int64) (*models.Listing, error)
	ListRecentListings(ctx context.Context, limit int) ([]models.Listing, error)
	SearchListings(ctx context.Context, keyword string, limit int) ([]models.Listing, error)

	// Keywords. The pipeline only reads them; create/delete serve the API.
	CreateKeyword(ctx context.Context, keyword *models.Keyword) error
	GetKeywordByID(ctx context.Context, id int64) (*models.Keyword, error)
	ListKeywordsByUser(ctx context.Context, userID string) ([]models.Keyword, error)
	ListAllKeywords(ctx context.Context) ([]models.Keyword, error)
	DeleteKeyword(ctx context.Context, id int64) (bool, error)

	// Alerts. HasAlert backs the at-most-one-per-(user, listing) check.
	CreateAlert(ctx context.Context, alert *models.Alert) error
	GetAlertByID(ctx context.Context, id int64) (*models.Alert, error)
	ListAlertsByUser(ctx context.Context, userID string, limit int) ([]models.Alert, error)
	HasAlert(ctx context.Context, userID string, listingID int64) (bool, error)

	Ping(ctx context.Context) error
	Close()
}
