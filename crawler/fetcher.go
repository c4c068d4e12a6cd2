package crawler

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Fetcher issues rate-limited GET requests against the source site and
// parses responses into traversable documents. Every fetch failure is
// logged and surfaced as a nil document; callers treat a nil document as a
// skippable page.
type Fetcher struct {
	client    *http.Client
	userAgent string
	delayMin  time.Duration
	delayMax  time.Duration
}

func NewFetcher(client *http.Client, userAgent string, delayMin, delayMax time.Duration) *Fetcher {
	if delayMax < delayMin {
		delayMax = delayMin
	}
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
		delayMin:  delayMin,
		delayMax:  delayMax,
	}
}

// FetchPage GETs rawURL with the given query parameters and returns the
// parsed document, or nil on any transport-level failure. A randomized
// delay in [delayMin, delayMax] precedes every request to throttle the
// crawl rate.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string, params url.Values) *goquery.Document {
	if !f.throttle(ctx) {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		log.Printf("fetch: bad request for %s: %v", rawURL, err)
		return nil
	}
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		log.Printf("fetch: request failed for %s: %v", rawURL, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("fetch: unexpected status %d for %s", resp.StatusCode, req.URL)
		return nil
	}

	// The court auction site serves EUC-KR; sniff the encoding instead of
	// assuming UTF-8.
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("fetch: charset detection failed for %s: %v", req.URL, err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		log.Printf("fetch: parse failed for %s: %v", req.URL, err)
		return nil
	}

	return doc
}

// throttle sleeps for a uniform random interval within the configured
// delay range. Returns false when the context is cancelled mid-sleep.
func (f *Fetcher) throttle(ctx context.Context) bool {
	delay := f.delayMin
	if span := f.delayMax - f.delayMin; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span) + 1))
	}
	if delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close releases the fetch session's idle connections. Called once per
// crawl run when the run finishes.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}
