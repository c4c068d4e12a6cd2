package httputil

import (
	"net/http"
	"time"
)

type Clients struct {
	Scraping *http.Client // for the auction site
	API      *http.Client // for webhook delivery and internal calls
}

func NewClients() *Clients {
	return &Clients{
		Scraping: &http.Client{Timeout: 30 * time.Second},
		API:      &http.Client{Timeout: 15 * time.Second},
	}
}
