package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auctionwatch/api"
	"auctionwatch/config"
	"auctionwatch/crawler"
	"auctionwatch/httputil"
	"auctionwatch/logging"
	"auctionwatch/scheduler"
	"auctionwatch/services"
	"auctionwatch/storage"
)

var (
	crawlNow = flag.Bool("crawl", false, "Run one crawl and exit")
	pages    = flag.Int("pages", 0, "Page count for -crawl (0 = configured default)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("auctionwatch.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting auctionwatch...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Loaded %d site configs", len(cfg.Sites))
	for id, site := range cfg.Sites {
		log.Printf("  - %s (%s)", site.Name, id)
	}

	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	opsStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open operational database: %v", err)
	}
	defer opsStore.Close()
	log.Printf("Operational database: %s", cfg.DBPath)

	clients := httputil.NewClients()
	notifier := services.NewNotificationService(clients.API)
	matchService := services.NewMatchService(store)
	alertService := services.NewAlertService(store, notifier)
	listingService := services.NewListingService(store, matchService, alertService)
	log.Println("Services initialized")

	orchestrator := crawler.NewOrchestrator(cfg, opsStore, listingService, clients)

	if *crawlNow {
		log.Println("Running crawl...")
		if err := orchestrator.Run(ctx, *pages); err != nil {
			log.Fatalf("Crawl failed: %v", err)
		}
		log.Println("Crawl complete!")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(cfg, orchestrator)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	server := api.NewServer(cfg, store, opsStore, orchestrator)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API shutdown error: %v", err)
	}

	log.Println("Goodbye!")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StoreKind == "memory" || cfg.DatabaseURL == "" {
		log.Println("Using in-memory store (no DATABASE_URL configured)")
		return storage.NewMemoryStore(), nil
	}

	store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Println("Connected to Postgres")
	return store, nil
}
