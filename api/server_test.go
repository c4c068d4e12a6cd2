package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"auctionwatch/config"
	"auctionwatch/crawler"
	"auctionwatch/httputil"
	"auctionwatch/models"
	"auctionwatch/services"
	"auctionwatch/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryStore, *storage.SQLiteStore) {
	t.Helper()

	cfg := &config.Config{
		Port:      8000,
		UserAgent: "test-agent",
		Crawler:   config.CrawlerConfig{Pages: 1},
		Sites:     map[string]*config.SiteConfig{},
	}

	ops, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "ops.db"))
	if err != nil {
		t.Fatalf("open ops store: %v", err)
	}
	t.Cleanup(func() { ops.Close() })

	store := storage.NewMemoryStore()
	notifier := services.NewNotificationService(&http.Client{})
	match := services.NewMatchService(store)
	alert := services.NewAlertService(store, notifier)
	listings := services.NewListingService(store, match, alert)
	orchestrator := crawler.NewOrchestrator(cfg, ops, listings, httputil.NewClients())

	return NewServer(cfg, store, ops, orchestrator), store, ops
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "healthy" || body["database"] != "connected" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestKeywordLifecycle(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/keywords", map[string]string{
		"user_id": "user-1",
		"keyword": "송파구",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}
	var created models.Keyword
	decodeJSON(t, rec, &created)
	if created.ID == 0 || created.Keyword != "송파구" {
		t.Fatalf("unexpected keyword %+v", created)
	}

	rec = doRequest(t, s, http.MethodGet, "/keywords?user_id=user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var keywords []models.Keyword
	decodeJSON(t, rec, &keywords)
	if len(keywords) != 1 {
		t.Fatalf("expected 1 keyword, got %d", len(keywords))
	}

	rec = doRequest(t, s, http.MethodDelete, "/keywords/1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/keywords/1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}

func TestCreateKeyword_Validation(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/keywords", map[string]string{"user_id": "user-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListKeywords_RequiresUserID(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/keywords", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestItemsEndpoints(t *testing.T) {
	s, store, _ := newTestServer(t)

	appraisal := int64(1234500)
	store.CreateListing(context.Background(), &models.Listing{
		Title:          "서울 송파구 아파트",
		AppraisalValue: &appraisal,
		URL:            "http://example.com/1",
		KeywordTags:    []string{"서울", "송파구", "아파트"},
		SourceSite:     "court_auction",
		CreatedAt:      time.Now(),
	})
	store.CreateListing(context.Background(), &models.Listing{
		Title:      "대전 토지",
		URL:        "http://example.com/2",
		SourceSite: "court_auction",
		CreatedAt:  time.Now(),
	})

	rec := doRequest(t, s, http.MethodGet, "/items", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var items []map[string]interface{}
	decodeJSON(t, rec, &items)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	rec = doRequest(t, s, http.MethodGet, "/items/search?keyword=송파구", nil)
	decodeJSON(t, rec, &items)
	if len(items) != 1 {
		t.Fatalf("expected 1 search hit, got %d", len(items))
	}
	if items[0]["appraisal_value_formatted"] != "1,234,500원" {
		t.Fatalf("formatted appraisal = %v", items[0]["appraisal_value_formatted"])
	}

	rec = doRequest(t, s, http.MethodGet, "/items/2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var item map[string]interface{}
	decodeJSON(t, rec, &item)
	if item["appraisal_value_formatted"] != "미정" {
		t.Fatalf("formatted appraisal for missing value = %v", item["appraisal_value_formatted"])
	}

	rec = doRequest(t, s, http.MethodGet, "/items/99", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing item status = %d", rec.Code)
	}
}

func TestAlertsEndpoints(t *testing.T) {
	s, store, _ := newTestServer(t)

	store.CreateAlert(context.Background(), &models.Alert{
		UserID:    "user-1",
		ListingID: 1,
		Message:   "새로운 경매 물건이 발견되었습니다: 서울 송파구 아파트...",
		SentAt:    time.Now(),
	})

	rec := doRequest(t, s, http.MethodGet, "/alerts?user_id=user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var alerts []models.Alert
	decodeJSON(t, rec, &alerts)
	if len(alerts) != 1 || alerts[0].ListingID != 1 {
		t.Fatalf("unexpected alerts %+v", alerts)
	}

	rec = doRequest(t, s, http.MethodGet, "/alerts?user_id=user-2", nil)
	decodeJSON(t, rec, &alerts)
	if len(alerts) != 0 {
		t.Fatalf("expected empty list for other user, got %+v", alerts)
	}

	rec = doRequest(t, s, http.MethodGet, "/alerts/99", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing alert status = %d", rec.Code)
	}
}

func TestRunCrawler_Accepted(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/crawler/run?pages=2", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]interface{}
	decodeJSON(t, rec, &body)
	if body["status"] != "started" {
		t.Fatalf("unexpected body %v", body)
	}
	if body["pages"].(float64) != 2 {
		t.Fatalf("pages = %v", body["pages"])
	}
}

func TestRunHistoryEndpoints(t *testing.T) {
	s, _, ops := newTestServer(t)

	run := &models.CrawlRun{
		RunToken:  "run-token-1",
		SourceID:  "court_auction",
		StartedAt: time.Now(),
		Status:    models.RunStatusCompleted,
		Pages:     1,
	}
	runID, err := ops.CreateRun(run)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if err := ops.Log(&runID, models.LogLevelInfo, "completed: 2 new items", "court_auction"); err != nil {
		t.Fatalf("write log: %v", err)
	}

	rec := doRequest(t, s, http.MethodGet, "/crawler/runs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("runs status = %d", rec.Code)
	}
	var runs []models.CrawlRun
	decodeJSON(t, rec, &runs)
	if len(runs) != 1 || runs[0].RunToken != "run-token-1" {
		t.Fatalf("unexpected runs %+v", runs)
	}

	rec = doRequest(t, s, http.MethodGet, "/crawler/runs/1/logs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logs status = %d", rec.Code)
	}
	var logs []models.CrawlLog
	decodeJSON(t, rec, &logs)
	if len(logs) != 1 || logs[0].Message != "completed: 2 new items" {
		t.Fatalf("unexpected logs %+v", logs)
	}

	rec = doRequest(t, s, http.MethodGet, "/crawler/runs/99/logs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logs status for unknown run = %d", rec.Code)
	}
	decodeJSON(t, rec, &logs)
	if len(logs) != 0 {
		t.Fatalf("expected empty logs for unknown run, got %+v", logs)
	}
}

func TestCrawlerStatus(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/crawler/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]interface{}
	decodeJSON(t, rec, &body)
	if body["status"] != "ready" {
		t.Fatalf("unexpected body %v", body)
	}
}
