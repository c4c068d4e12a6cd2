package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"auctionwatch/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS detected_items (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		appraisal_value BIGINT,
		bid_date DATE,
		url TEXT NOT NULL,
		keyword_tags TEXT[] NOT NULL DEFAULT '{}',
		source_site VARCHAR(100),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_detected_items_url ON detected_items (url);
	CREATE INDEX IF NOT EXISTS idx_detected_items_created_at ON detected_items (created_at);

	CREATE TABLE IF NOT EXISTS auction_keywords (
		id BIGSERIAL PRIMARY KEY,
		user_id VARCHAR(100) NOT NULL,
		keyword VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_auction_keywords_user_id ON auction_keywords (user_id);

	CREATE TABLE IF NOT EXISTS alerts (
		id BIGSERIAL PRIMARY KEY,
		user_id VARCHAR(100) NOT NULL,
		item_id BIGINT NOT NULL REFERENCES detected_items(id),
		message TEXT,
		sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_user_id ON alerts (user_id);
	CREATE INDEX IF NOT EXISTS idx_alerts_sent_at ON alerts (sent_at);`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// Listings
// =============================================================================

func (s *PostgresStore) CreateListing(ctx context.Context, l *models.Listing) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	tags := l.KeywordTags
	if tags == nil {
		// pgx encodes a nil slice as SQL NULL, which the NOT NULL
		// column rejects.
		tags = []string{}
	}
	query := `
		INSERT INTO detected_items (title, appraisal_value, bid_date, url, keyword_tags, source_site, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		l.Title, l.AppraisalValue, l.BidDate, l.URL, tags, l.SourceSite, l.CreatedAt,
	).Scan(&l.ID)
}

func (s *PostgresStore) GetListingByURL(ctx context.Context, url string) (*models.Listing, error) {
	query := `
		SELECT id, title, appraisal_value, bid_date, url, keyword_tags, source_site, created_at
		FROM detected_items WHERE url = $1
		ORDER BY id LIMIT 1`
	return s.scanListing(s.pool.QueryRow(ctx, query, url))
}

func (s *PostgresStore) GetListingByID(ctx context.Context, id int64) (*models.Listing, error) {
	query := `
		SELECT id, title, appraisal_value, bid_date, url, keyword_tags, source_site, created_at
		FROM detected_items WHERE id = $1`
	return s.scanListing(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresStore) ListRecentListings(ctx context.Context, limit int) ([]models.Listing, error) {
	query := `
		SELECT id, title, appraisal_value, bid_date, url, keyword_tags, source_site, created_at
		FROM detected_items
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

func (s *PostgresStore) SearchListings(ctx context.Context, keyword string, limit int) ([]models.Listing, error) {
	query := `
		SELECT id, title, appraisal_value, bid_date, url, keyword_tags, source_site, created_at
		FROM detected_items
		WHERE title ILIKE '%' || $1 || '%' OR $1 = ANY(keyword_tags)
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, keyword, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

func (s *PostgresStore) scanListing(row pgx.Row) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(&l.ID, &l.Title, &l.AppraisalValue, &l.BidDate, &l.URL, &l.KeywordTags, &l.SourceSite, &l.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func scanListings(rows pgx.Rows) ([]models.Listing, error) {
	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.ID, &l.Title, &l.AppraisalValue, &l.BidDate, &l.URL, &l.KeywordTags, &l.SourceSite, &l.CreatedAt); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// =============================================================================
// Keywords
// =============================================================================

func (s *PostgresStore) CreateKeyword(ctx context.Context, k *models.Keyword) error {
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO auction_keywords (user_id, keyword, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`
	return s.pool.QueryRow(ctx, query, k.UserID, k.Keyword, k.CreatedAt).Scan(&k.ID)
}

func (s *PostgresStore) GetKeywordByID(ctx context.Context, id int64) (*models.Keyword, error) {
	query := `SELECT id, user_id, keyword, created_at FROM auction_keywords WHERE id = $1`

	var k models.Keyword
	err := s.pool.QueryRow(ctx, query, id).Scan(&k.ID, &k.UserID, &k.Keyword, &k.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (s *PostgresStore) ListKeywordsByUser(ctx context.Context, userID string) ([]models.Keyword, error) {
	query := `
		SELECT id, user_id, keyword, created_at FROM auction_keywords
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKeywords(rows)
}

func (s *PostgresStore) ListAllKeywords(ctx context.Context) ([]models.Keyword, error) {
	query := `SELECT id, user_id, keyword, created_at FROM auction_keywords ORDER BY id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKeywords(rows)
}

func (s *PostgresStore) DeleteKeyword(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM auction_keywords WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanKeywords(rows pgx.Rows) ([]models.Keyword, error) {
	var keywords []models.Keyword
	for rows.Next() {
		var k models.Keyword
		if err := rows.Scan(&k.ID, &k.UserID, &k.Keyword, &k.CreatedAt); err != nil {
			return nil, err
		}
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// =============================================================================
// Alerts
// =============================================================================

func (s *PostgresStore) CreateAlert(ctx context.Context, a *models.Alert) error {
	if a.SentAt.IsZero() {
		a.SentAt = time.Now()
	}
	query := `
		INSERT INTO alerts (user_id, item_id, message, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	return s.pool.QueryRow(ctx, query, a.UserID, a.ListingID, a.Message, a.SentAt).Scan(&a.ID)
}

func (s *PostgresStore) GetAlertByID(ctx context.Context, id int64) (*models.Alert, error) {
	query := `SELECT id, user_id, item_id, message, sent_at FROM alerts WHERE id = $1`

	var a models.Alert
	err := s.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.UserID, &a.ListingID, &a.Message, &a.SentAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) ListAlertsByUser(ctx context.Context, userID string, limit int) ([]models.Alert, error) {
	query := `
		SELECT id, user_id, item_id, message, sent_at FROM alerts
		WHERE user_id = $1
		ORDER BY sent_at DESC, id DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.UserID, &a.ListingID, &a.Message, &a.SentAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *PostgresStore) HasAlert(ctx context.Context, userID string, listingID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM alerts WHERE user_id = $1 AND item_id = $2)`,
		userID, listingID,
	).Scan(&exists)
	return exists, err
}
