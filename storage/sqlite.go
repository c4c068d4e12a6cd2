package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"auctionwatch/models"
)

// SQLiteStore holds operational data: crawl run records, per-run logs, and
// per-source stats. Domain data lives in the Store implementations.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id INTEGER PRIMARY KEY,
		run_token TEXT,
		source_id TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		pages INTEGER,
		total_items INTEGER,
		new_items INTEGER,
		duplicate_items INTEGER,
		matched_items INTEGER,
		alerts_sent INTEGER,
		errors_count INTEGER,
		error_message TEXT
	);

	CREATE TABLE IF NOT EXISTS crawl_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		source_id TEXT
	);

	CREATE TABLE IF NOT EXISTS site_stats (
		source_id TEXT PRIMARY KEY,
		last_run_at DATETIME,
		last_run_status TEXT,
		total_runs INTEGER DEFAULT 0,
		total_new_items INTEGER DEFAULT 0,
		total_alerts INTEGER DEFAULT 0
	);`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.CrawlRun) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO crawl_runs (run_token, source_id, started_at, status, pages,
			total_items, new_items, duplicate_items, matched_items, alerts_sent, errors_count, error_message)
		VALUES (?, ?, ?, ?, ?, 0, 0, 0, 0, 0, 0, '')`,
		run.RunToken, run.SourceID, run.StartedAt, run.Status, run.Pages)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.CrawlRun) error {
	_, err := s.db.Exec(`
		UPDATE crawl_runs SET finished_at = ?, status = ?, total_items = ?, new_items = ?,
			duplicate_items = ?, matched_items = ?, alerts_sent = ?, errors_count = ?, error_message = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.TotalItems, run.NewItems,
		run.DuplicateItems, run.MatchedItems, run.AlertsSent, run.ErrorsCount, run.ErrorMessage,
		run.ID)
	return err
}

func (s *SQLiteStore) GetLastRun(sourceID string) (*models.CrawlRun, error) {
	row := s.db.QueryRow(`
		SELECT id, run_token, source_id, started_at, finished_at, status, pages,
			total_items, new_items, duplicate_items, matched_items, alerts_sent, errors_count, error_message
		FROM crawl_runs WHERE source_id = ?
		ORDER BY id DESC LIMIT 1`, sourceID)

	var run models.CrawlRun
	err := row.Scan(&run.ID, &run.RunToken, &run.SourceID, &run.StartedAt, &run.FinishedAt,
		&run.Status, &run.Pages, &run.TotalItems, &run.NewItems, &run.DuplicateItems,
		&run.MatchedItems, &run.AlertsSent, &run.ErrorsCount, &run.ErrorMessage)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *SQLiteStore) ListRecentRuns(limit int) ([]models.CrawlRun, error) {
	rows, err := s.db.Query(`
		SELECT id, run_token, source_id, started_at, finished_at, status, pages,
			total_items, new_items, duplicate_items, matched_items, alerts_sent, errors_count, error_message
		FROM crawl_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.CrawlRun
	for rows.Next() {
		var run models.CrawlRun
		if err := rows.Scan(&run.ID, &run.RunToken, &run.SourceID, &run.StartedAt, &run.FinishedAt,
			&run.Status, &run.Pages, &run.TotalItems, &run.NewItems, &run.DuplicateItems,
			&run.MatchedItems, &run.AlertsSent, &run.ErrorsCount, &run.ErrorMessage); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, sourceID string) error {
	_, err := s.db.Exec(`
		INSERT INTO crawl_logs (run_id, timestamp, level, message, source_id)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, sourceID)
	return err
}

func (s *SQLiteStore) ListRunLogs(runID int64, limit int) ([]models.CrawlLog, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, timestamp, level, message, source_id
		FROM crawl_logs WHERE run_id = ?
		ORDER BY id LIMIT ?`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.CrawlLog
	for rows.Next() {
		var l models.CrawlLog
		if err := rows.Scan(&l.ID, &l.RunID, &l.Timestamp, &l.Level, &l.Message, &l.SourceID); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// UpdateSiteStats rolls the finished run into the per-source stats row.
func (s *SQLiteStore) UpdateSiteStats(run *models.CrawlRun) error {
	_, err := s.db.Exec(`
		INSERT INTO site_stats (source_id, last_run_at, last_run_status, total_runs, total_new_items, total_alerts)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			last_run_at = excluded.last_run_at,
			last_run_status = excluded.last_run_status,
			total_runs = total_runs + 1,
			total_new_items = total_new_items + excluded.total_new_items,
			total_alerts = total_alerts + excluded.total_alerts`,
		run.SourceID, run.StartedAt, run.Status, run.NewItems, run.AlertsSent)
	return err
}

func (s *SQLiteStore) GetSiteStats(sourceID string) (*models.SiteStats, error) {
	row := s.db.QueryRow(`
		SELECT source_id, last_run_at, last_run_status, total_runs, total_new_items, total_alerts
		FROM site_stats WHERE source_id = ?`, sourceID)

	var stats models.SiteStats
	err := row.Scan(&stats.SourceID, &stats.LastRunAt, &stats.LastRunStatus,
		&stats.TotalRuns, &stats.TotalNewItems, &stats.TotalAlerts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
