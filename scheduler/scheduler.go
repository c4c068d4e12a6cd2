package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"auctionwatch/config"
	"auctionwatch/crawler"
)

// Scheduler triggers crawl runs on a cron expression or a fixed interval.
// An overlapping trigger while a run is active is logged and dropped.
type Scheduler struct {
	cfg          *config.Config
	orchestrator *crawler.Orchestrator
	cron         *cron.Cron
	ticker       *time.Ticker
	stopCh       chan struct{}
}

func New(cfg *config.Config, orchestrator *crawler.Orchestrator) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		orchestrator: orchestrator,
		cron:         cron.New(),
		stopCh:       make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Scheduler.Cron != "" {
		log.Printf("scheduler: cron %q", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			s.runOnce(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
		return nil
	}

	if s.cfg.Scheduler.Interval > 0 {
		log.Printf("scheduler: interval %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.runOnce(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
		return nil
	}

	log.Println("scheduler: no schedule configured, runs must be triggered manually")
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	err := s.orchestrator.Run(ctx, s.cfg.Crawler.Pages)
	if errors.Is(err, crawler.ErrRunActive) {
		log.Println("scheduler: previous run still active, skipping")
		return
	}
	if err != nil {
		log.Printf("scheduler: run error: %v", err)
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}
