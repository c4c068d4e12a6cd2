// Package api exposes the REST surface: keyword CRUD, listing and alert
// reads, and the crawl trigger. Handlers are thin wrappers over the store
// and the orchestrator.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"auctionwatch/config"
	"auctionwatch/crawler"
	"auctionwatch/storage"
)

type Server struct {
	cfg          *config.Config
	store        storage.Store
	ops          *storage.SQLiteStore
	orchestrator *crawler.Orchestrator
	http         *http.Server
}

func NewServer(cfg *config.Config, store storage.Store, ops *storage.SQLiteStore, orchestrator *crawler.Orchestrator) *Server {
	s := &Server{
		cfg:          cfg,
		store:        store,
		ops:          ops,
		orchestrator: orchestrator,
	}

	r := mux.NewRouter()
	r.Use(logMiddleware)

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/keywords", s.handleListKeywords).Methods(http.MethodGet)
	r.HandleFunc("/keywords", s.handleCreateKeyword).Methods(http.MethodPost)
	r.HandleFunc("/keywords/{id:[0-9]+}", s.handleGetKeyword).Methods(http.MethodGet)
	r.HandleFunc("/keywords/{id:[0-9]+}", s.handleDeleteKeyword).Methods(http.MethodDelete)

	r.HandleFunc("/items", s.handleListItems).Methods(http.MethodGet)
	r.HandleFunc("/items/search", s.handleSearchItems).Methods(http.MethodGet)
	r.HandleFunc("/items/{id:[0-9]+}", s.handleGetItem).Methods(http.MethodGet)

	r.HandleFunc("/alerts", s.handleListAlerts).Methods(http.MethodGet)
	r.HandleFunc("/alerts/{id:[0-9]+}", s.handleGetAlert).Methods(http.MethodGet)

	r.HandleFunc("/crawler/run", s.handleRunCrawler).Methods(http.MethodPost)
	r.HandleFunc("/crawler/status", s.handleCrawlerStatus).Methods(http.MethodGet)
	r.HandleFunc("/crawler/runs", s.handleListRuns).Methods(http.MethodGet)
	r.HandleFunc("/crawler/runs/{id:[0-9]+}/logs", s.handleRunLogs).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) ListenAndServe() error {
	log.Printf("api: listening on %s", s.http.Addr)
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("api: %s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
