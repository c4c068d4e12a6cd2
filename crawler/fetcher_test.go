package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newTestFetcher() *Fetcher {
	return NewFetcher(&http.Client{}, "test-agent", 0, 0)
}

func TestFetchPage_ParsesDocument(t *testing.T) {
	var gotAgent, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("pageIndex")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><table><tr class="Ltbllist"><td>row</td></tr></table></body></html>`))
	}))
	defer ts.Close()

	params := url.Values{}
	params.Set("pageIndex", "2")

	doc := newTestFetcher().FetchPage(context.Background(), ts.URL, params)
	if doc == nil {
		t.Fatal("expected a document")
	}
	if gotAgent != "test-agent" {
		t.Errorf("expected User-Agent test-agent, got %q", gotAgent)
	}
	if gotQuery != "2" {
		t.Errorf("expected pageIndex=2, got %q", gotQuery)
	}
	if doc.Find("tr.Ltbllist").Length() != 1 {
		t.Error("expected one listing row in parsed document")
	}
}

func TestFetchPage_NonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	if doc := newTestFetcher().FetchPage(context.Background(), ts.URL, nil); doc != nil {
		t.Fatal("expected nil document for 503 response")
	}
}

func TestFetchPage_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // closed before use

	if doc := newTestFetcher().FetchPage(context.Background(), ts.URL, nil); doc != nil {
		t.Fatal("expected nil document when the server is unreachable")
	}
}

func TestFetchPage_CancelledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html></html>`))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if doc := newTestFetcher().FetchPage(ctx, ts.URL, nil); doc != nil {
		t.Fatal("expected nil document for cancelled context")
	}
}
