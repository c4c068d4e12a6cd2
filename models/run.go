package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// CrawlRun is the operational record for one end-to-end crawl execution.
type CrawlRun struct {
	ID             int64      `json:"id" db:"id"`
	RunToken       string     `json:"run_token" db:"run_token"`
	SourceID       string     `json:"source_id" db:"source_id"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	FinishedAt     *time.Time `json:"finished_at" db:"finished_at"`
	Status         RunStatus  `json:"status" db:"status"`
	Pages          int        `json:"pages" db:"pages"`
	TotalItems     int        `json:"total_items" db:"total_items"`
	NewItems       int        `json:"new_items" db:"new_items"`
	DuplicateItems int        `json:"duplicate_items" db:"duplicate_items"`
	MatchedItems   int        `json:"matched_items" db:"matched_items"`
	AlertsSent     int        `json:"alerts_sent" db:"alerts_sent"`
	ErrorsCount    int        `json:"errors_count" db:"errors_count"`
	ErrorMessage   string     `json:"error_message" db:"error_message"`
}

type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// CrawlLog is one log line attached to a crawl run.
type CrawlLog struct {
	ID        int64     `json:"id" db:"id"`
	RunID     *int64    `json:"run_id" db:"run_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Level     LogLevel  `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
	SourceID  string    `json:"source_id" db:"source_id"`
}

// SiteStats is a per-source rollup maintained after each run.
type SiteStats struct {
	SourceID      string     `json:"source_id" db:"source_id"`
	LastRunAt     *time.Time `json:"last_run_at" db:"last_run_at"`
	LastRunStatus string     `json:"last_run_status" db:"last_run_status"`
	TotalRuns     int        `json:"total_runs" db:"total_runs"`
	TotalNewItems int        `json:"total_new_items" db:"total_new_items"`
	TotalAlerts   int        `json:"total_alerts" db:"total_alerts"`
}
