package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseURL string
	StoreKind   string // "postgres" or "memory"
	DBPath      string // operational sqlite
	Port        int
	LogLevel    string
	UserAgent   string
	Scheduler   SchedulerConfig
	Crawler     CrawlerConfig
	Sites       map[string]*SiteConfig
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type CrawlerConfig struct {
	Pages int
}

type SiteConfig struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Handler    string `yaml:"handler"`
	BaseURL    string `yaml:"base_url"`
	SearchPath string `yaml:"search_path"`
	PageSize   int    `yaml:"page_size"`
	DelayMinMS int    `yaml:"delay_min_ms"`
	DelayMaxMS int    `yaml:"delay_max_ms"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StoreKind:   getEnv("STORE", "postgres"),
		DBPath:      getEnv("DB_PATH", "auctionwatch.db"),
		Port:        getEnvInt("PORT", 8000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		UserAgent:   getEnv("USER_AGENT", defaultUserAgent),
		Scheduler: SchedulerConfig{
			Cron:     os.Getenv("CRAWL_CRON"),
			Interval: time.Duration(getEnvInt("CRAWL_INTERVAL_HOURS", 2)) * time.Hour,
		},
		Crawler: CrawlerConfig{
			Pages: getEnvInt("CRAWL_PAGES", 3),
		},
		Sites: make(map[string]*SiteConfig),
	}

	if interval := os.Getenv("CRAWL_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadSiteConfigs(); err != nil {
		return nil, err
	}

	if len(cfg.Sites) == 0 {
		site := DefaultCourtAuctionSite()
		cfg.Sites[site.ID] = site
	}

	return cfg, nil
}

// DefaultCourtAuctionSite is the built-in source definition, used when no
// site yaml is present.
func DefaultCourtAuctionSite() *SiteConfig {
	return &SiteConfig{
		ID:         "court_auction",
		Name:       "대법원 경매정보",
		Handler:    "html",
		BaseURL:    "http://www.courtauction.go.kr",
		SearchPath: "/RetrieveRealEstateDetailList.laf",
		PageSize:   20,
		DelayMinMS: 1000,
		DelayMaxMS: 3000,
	}
}

func (c *Config) loadSiteConfigs() error {
	configDir := "config/sites"
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var site SiteConfig
		if err := yaml.Unmarshal(data, &site); err != nil {
			return err
		}

		c.Sites[site.ID] = &site
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
