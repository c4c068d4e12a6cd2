package models

import "time"

// Listing is one auction property record harvested from the source site.
// Identity is the detail URL: once a URL has been stored, the listing is
// never updated or deleted by the crawl pipeline.
type Listing struct {
	ID             int64      `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	AppraisalValue *int64     `json:"appraisal_value" db:"appraisal_value"`
	BidDate        *time.Time `json:"bid_date" db:"bid_date"`
	URL            string     `json:"url" db:"url"`
	KeywordTags    []string   `json:"keyword_tags" db:"keyword_tags"`
	SourceSite     string     `json:"source_site" db:"source_site"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// Keyword is a user-registered search term. Duplicate (user_id, keyword)
// rows are allowed; matching treats them as idempotent.
type Keyword struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Keyword   string    `json:"keyword" db:"keyword"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Alert is a persisted notification for one (user, listing) match.
// At most one alert exists per pair, enforced by an existence check
// before insert.
type Alert struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ListingID int64     `json:"listing_id" db:"listing_id"`
	Message   string    `json:"message" db:"message"`
	SentAt    time.Time `json:"sent_at" db:"sent_at"`
}

// ScrapedItem is a listing as extracted from a source page, before it has
// been deduplicated or assigned an identity.
type ScrapedItem struct {
	Title          string
	AppraisalValue *int64
	BidDate        *time.Time
	URL            string
	Tags           []string
	SourceSite     string
}

// Notification channels
const (
	ChannelDatabase = "database"
	ChannelEmail    = "email"
	ChannelWebhook  = "webhook"
)
