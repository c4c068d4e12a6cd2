package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"auctionwatch/models"
	"auctionwatch/textutil"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "경매 알림 SaaS API",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}

// =============================================================================
// Keywords
// =============================================================================

func (s *Server) handleListKeywords(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	keywords, err := s.store.ListKeywordsByUser(r.Context(), userID)
	if err != nil {
		log.Printf("api: list keywords: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list keywords")
		return
	}
	if keywords == nil {
		keywords = []models.Keyword{}
	}
	writeJSON(w, http.StatusOK, keywords)
}

type createKeywordRequest struct {
	UserID  string `json:"user_id"`
	Keyword string `json:"keyword"`
}

func (s *Server) handleCreateKeyword(w http.ResponseWriter, r *http.Request) {
	var req createKeywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Keyword == "" {
		writeError(w, http.StatusBadRequest, "user_id and keyword are required")
		return
	}

	keyword := &models.Keyword{
		UserID:    req.UserID,
		Keyword:   req.Keyword,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateKeyword(r.Context(), keyword); err != nil {
		log.Printf("api: create keyword: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create keyword")
		return
	}
	writeJSON(w, http.StatusCreated, keyword)
}

func (s *Server) handleGetKeyword(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	keyword, err := s.store.GetKeywordByID(r.Context(), id)
	if err != nil {
		log.Printf("api: get keyword %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to get keyword")
		return
	}
	if keyword == nil {
		writeError(w, http.StatusNotFound, "keyword not found")
		return
	}
	writeJSON(w, http.StatusOK, keyword)
}

func (s *Server) handleDeleteKeyword(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	deleted, err := s.store.DeleteKeyword(r.Context(), id)
	if err != nil {
		log.Printf("api: delete keyword %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete keyword")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "keyword not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Items
// =============================================================================

// itemResponse adds the display form of the appraisal value.
type itemResponse struct {
	models.Listing
	AppraisalValueFormatted string `json:"appraisal_value_formatted"`
}

func toItemResponses(listings []models.Listing) []itemResponse {
	out := make([]itemResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, itemResponse{
			Listing:                 l,
			AppraisalValueFormatted: textutil.FormatCurrency(l.AppraisalValue),
		})
	}
	return out
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50, 100)
	listings, err := s.store.ListRecentListings(r.Context(), limit)
	if err != nil {
		log.Printf("api: list items: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	writeJSON(w, http.StatusOK, toItemResponses(listings))
}

func (s *Server) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	limit := queryInt(r, "limit", 50, 100)
	listings, err := s.store.SearchListings(r.Context(), keyword, limit)
	if err != nil {
		log.Printf("api: search items: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to search items")
		return
	}
	writeJSON(w, http.StatusOK, toItemResponses(listings))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	listing, err := s.store.GetListingByID(r.Context(), id)
	if err != nil {
		log.Printf("api: get item %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if listing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, itemResponse{
		Listing:                 *listing,
		AppraisalValueFormatted: textutil.FormatCurrency(listing.AppraisalValue),
	})
}

// =============================================================================
// Alerts
// =============================================================================

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	limit := queryInt(r, "limit", 50, 100)
	alerts, err := s.store.ListAlertsByUser(r.Context(), userID, limit)
	if err != nil {
		log.Printf("api: list alerts: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	alert, err := s.store.GetAlertByID(r.Context(), id)
	if err != nil {
		log.Printf("api: get alert %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to get alert")
		return
	}
	if alert == nil {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

// =============================================================================
// Crawler
// =============================================================================

// handleRunCrawler acknowledges immediately and runs the crawl in the
// background; success or failure of the run is observable through
// /crawler/status and the logs, not through this response.
func (s *Server) handleRunCrawler(w http.ResponseWriter, r *http.Request) {
	pages := queryInt(r, "pages", s.cfg.Crawler.Pages, 50)

	go func() {
		if err := s.orchestrator.Run(context.Background(), pages); err != nil {
			log.Printf("api: triggered run failed: %v", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "크롤링이 시작되었습니다",
		"pages":   pages,
		"status":  "started",
	})
}

func (s *Server) handleCrawlerStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ready",
	}
	if s.orchestrator.IsRunning() {
		status["status"] = "running"
	}

	var sites []string
	for id := range s.cfg.Sites {
		sites = append(sites, id)
		if lastRun, err := s.ops.GetLastRun(id); err == nil && lastRun != nil {
			status["last_run"] = lastRun
		}
		if stats, err := s.ops.GetSiteStats(id); err == nil && stats != nil {
			status["site_stats"] = stats
		}
	}
	status["supported_sites"] = sites

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20, 100)
	runs, err := s.ops.ListRecentRuns(limit)
	if err != nil {
		log.Printf("api: list runs: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []models.CrawlRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunLogs(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	limit := queryInt(r, "limit", 100, 500)
	logs, err := s.ops.ListRunLogs(id, limit)
	if err != nil {
		log.Printf("api: list run logs %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to list run logs")
		return
	}
	if logs == nil {
		logs = []models.CrawlLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// =============================================================================
// Helpers
// =============================================================================

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func queryInt(r *http.Request, key string, defaultVal, max int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			if max > 0 && v > max {
				return max
			}
			return v
		}
	}
	return defaultVal
}
