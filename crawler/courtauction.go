package crawler

import (
	"context"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"auctionwatch/config"
	"auctionwatch/models"
	"auctionwatch/tags"
	"auctionwatch/textutil"
)

// CourtAuctionSource crawls the Supreme Court auction listing search
// (대법원 경매정보). Listings are rendered as table rows; each page holds a
// fixed number of rows.
type CourtAuctionSource struct {
	cfg     *config.SiteConfig
	fetcher *Fetcher
}

func NewCourtAuctionSource(cfg *config.SiteConfig, fetcher *Fetcher) *CourtAuctionSource {
	return &CourtAuctionSource{cfg: cfg, fetcher: fetcher}
}

func (s *CourtAuctionSource) ID() string   { return s.cfg.ID }
func (s *CourtAuctionSource) Name() string { return s.cfg.Name }

// Crawl fetches pages 1..pages sequentially and returns the aggregated
// items in page order then row order. A page that fails to fetch is logged
// and skipped; the remaining pages still proceed.
func (s *CourtAuctionSource) Crawl(ctx context.Context, pages int) ([]models.ScrapedItem, error) {
	var items []models.ScrapedItem
	searchURL := s.cfg.BaseURL + s.cfg.SearchPath

	for page := 1; page <= pages; page++ {
		if ctx.Err() != nil {
			return items, ctx.Err()
		}

		log.Printf("crawl: fetching page %d/%d", page, pages)

		params := url.Values{}
		params.Set("pageIndex", strconv.Itoa(page))
		params.Set("pageSize", strconv.Itoa(s.cfg.PageSize))
		// Empty filters mean "all": usage, road address, appraisal range.
		params.Set("realEstateUsage", "")
		params.Set("roadNameAddress", "")
		params.Set("appraisalValueMin", "")
		params.Set("appraisalValueMax", "")

		doc := s.fetcher.FetchPage(ctx, searchURL, params)
		if doc == nil {
			log.Printf("crawl: page %d returned no document, skipping", page)
			continue
		}

		pageItems := s.ExtractItems(doc)
		items = append(items, pageItems...)
		log.Printf("crawl: page %d: %d items", page, len(pageItems))
	}

	log.Printf("crawl: %d items total", len(items))
	return items, nil
}

// ExtractItems walks the listing rows of a parsed search result page. A
// malformed row is skipped without affecting the remaining rows.
func (s *CourtAuctionSource) ExtractItems(doc *goquery.Document) []models.ScrapedItem {
	var items []models.ScrapedItem

	doc.Find("tr.Ltbllist, tr.Ltbllist2").Each(func(_ int, row *goquery.Selection) {
		item, ok := s.extractRow(row)
		if !ok {
			return
		}
		items = append(items, item)
	})

	return items
}

// extractRow pulls one listing out of a table row. Rows need at least 8
// cells; the detail link lives in cell 2, the appraisal value in cell 4,
// and the bid date in cell 6.
func (s *CourtAuctionSource) extractRow(row *goquery.Selection) (models.ScrapedItem, bool) {
	cells := row.Find("td")
	if cells.Length() < 8 {
		return models.ScrapedItem{}, false
	}

	link := cells.Eq(2).Find("a").First()
	if link.Length() == 0 {
		return models.ScrapedItem{}, false
	}

	title := textutil.CleanText(link.Text())
	href, _ := link.Attr("href")
	detailURL := s.resolveURL(href)

	var appraisal *int64
	if v, ok := textutil.ExtractNumber(textutil.CleanText(cells.Eq(4).Text())); ok {
		appraisal = &v
	}

	bidDate := ParseBidDate(textutil.CleanText(cells.Eq(6).Text()))

	return models.ScrapedItem{
		Title:          title,
		AppraisalValue: appraisal,
		BidDate:        bidDate,
		URL:            detailURL,
		Tags:           tags.Extract(title),
		SourceSite:     s.cfg.Name,
	}, true
}

func (s *CourtAuctionSource) resolveURL(href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(s.cfg.BaseURL + "/")
	if err != nil {
		return s.cfg.BaseURL + "/" + href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return s.cfg.BaseURL + "/" + href
	}
	return base.ResolveReference(ref).String()
}

var bidDateRe = regexp.MustCompile(`(\d{4})\.(\d{2})\.(\d{2})`)

// ParseBidDate finds a YYYY.MM.DD pattern anywhere in text and returns the
// date, or nil when no valid date is present.
func ParseBidDate(text string) *time.Time {
	m := bidDateRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &d
}
