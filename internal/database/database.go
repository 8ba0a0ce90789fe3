package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tokenhealth/internal/config"
	"tokenhealth/internal/models"

	_ "github.com/lib/pq"
)

// Database provides access to scan history and subscriber rows and owns the
// underlying connection used by the cache store.
type Database struct {
	db *sql.DB
}

func New() (*Database, error) {
	// Get database connection string from config
	databaseURL := config.GetDatabaseURL()
	if databaseURL == "" {
		return nil, fmt.Errorf("databaseUrl not configured")
	}

	// Create database if it doesn't exist
	if err := createDatabaseIfNotExists(databaseURL); err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w, and failed to close connection: %w", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to run migrations: %w, and failed to close connection: %w", err, closeErr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// DB exposes the raw connection for the postgres cache store.
func (d *Database) DB() *sql.DB {
	return d.db
}

// InsertScan appends one row to the scan history. Scan rows are never
// updated or deleted by this service.
func (d *Database) InsertScan(ctx context.Context, scan *models.ScanRecord) error {
	scores, err := json.Marshal(scan.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal category scores: %w", err)
	}

	query := `
		INSERT INTO token_scans (
			id, token_id, token_symbol, token_name, token_address,
			health_score, category_scores, user_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = d.db.ExecContext(ctx, query,
		scan.ID, scan.TokenID, scan.TokenSymbol, scan.TokenName, scan.TokenAddress,
		scan.HealthScore, scores, scan.UserID, scan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}
	return nil
}

// RecentScans returns the newest scan rows, newest first.
func (d *Database) RecentScans(ctx context.Context, limit int) ([]models.ScanRecord, error) {
	query := `
		SELECT id, token_id, token_symbol, token_name, token_address,
		       health_score, category_scores, user_id, created_at
		FROM token_scans
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var scans []models.ScanRecord
	for rows.Next() {
		var scan models.ScanRecord
		var scores []byte
		err := rows.Scan(
			&scan.ID, &scan.TokenID, &scan.TokenSymbol, &scan.TokenName,
			&scan.TokenAddress, &scan.HealthScore, &scores, &scan.UserID,
			&scan.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal(scores, &scan.Scores); err != nil {
			return nil, fmt.Errorf("failed to unmarshal category scores: %w", err)
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return scans, nil
}

// CountScansSince counts how many scans a user has performed since the given
// instant. Used for daily quota enforcement.
func (d *Database) CountScansSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM token_scans
		WHERE user_id = $1 AND created_at >= $2
	`
	var count int
	if err := d.db.QueryRowContext(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scans: %w", err)
	}
	return count, nil
}

// Subscribers returns all subscriber rows. Used for the initial quota load;
// subsequent changes arrive over the realtime subscription.
func (d *Database) Subscribers(ctx context.Context) ([]models.Subscriber, error) {
	query := `
		SELECT user_id, plan, updated_at
		FROM subscribers
	`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscriber
	for rows.Next() {
		var sub models.Subscriber
		if err := rows.Scan(&sub.UserID, &sub.Plan, &sub.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return subs, nil
}
