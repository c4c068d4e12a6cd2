package crawler

import (
	"context"

	"auctionwatch/config"
	"auctionwatch/models"
)

// Source is one site-specific listing adapter. Implementations share the
// Fetcher for rate-limited page access and report recoverable page/row
// failures by returning fewer items, not an error.
type Source interface {
	ID() string
	Name() string
	Crawl(ctx context.Context, pages int) ([]models.ScrapedItem, error)
}

func NewSource(siteCfg *config.SiteConfig, fetcher *Fetcher) Source {
	switch siteCfg.Handler {
	case "html":
		return NewCourtAuctionSource(siteCfg, fetcher)
	default:
		return NewCourtAuctionSource(siteCfg, fetcher)
	}
}
