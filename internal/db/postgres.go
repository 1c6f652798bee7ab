package db

import (
	"context"
	"fmt"
	"time"

	"civic-engagement/missionhub/internal/logging"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// AnalyticsDB is the reporting store mirrored from the primary store
var AnalyticsDB *sqlx.DB

// InitAnalytics connects to the analytics Postgres, retrying while the server starts
func InitAnalytics(dsn string) (*sqlx.DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)

	for i := 0; i < 10; i++ {
		conn, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			AnalyticsDB = conn
			logging.Info("Connected to analytics Postgres (sqlx)")
			return conn, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to analytics store: %w", err)
}

// The DDL sticks to types and clauses understood by both Postgres and SQLite
var analyticsSchema = []string{
	`CREATE TABLE IF NOT EXISTS partners (
		id TEXT PRIMARY KEY,
		old_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		old_id TEXT NOT NULL UNIQUE,
		rna TEXT,
		siren TEXT,
		siret TEXT,
		title TEXT NOT NULL,
		city TEXT,
		postal_code TEXT,
		department TEXT,
		source TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS missions (
		id TEXT PRIMARY KEY,
		old_id TEXT NOT NULL UNIQUE,
		client_id TEXT NOT NULL,
		partner_id TEXT REFERENCES partners(id),
		organization_id TEXT REFERENCES organizations(id),
		title TEXT NOT NULL,
		domain TEXT,
		activity TEXT,
		remote TEXT,
		places INTEGER,
		city TEXT,
		postal_code TEXT,
		department_code TEXT,
		department_name TEXT,
		region TEXT,
		country TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		geoloc_status TEXT,
		organization_verification_status TEXT,
		status_code TEXT NOT NULL,
		status_comment TEXT,
		start_at TIMESTAMP,
		end_at TIMESTAMP,
		posted_at TIMESTAMP,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		deleted_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_missions_partner ON missions (partner_id)`,
	`CREATE TABLE IF NOT EXISTS imports (
		id TEXT PRIMARY KEY,
		old_id TEXT NOT NULL UNIQUE,
		partner_id TEXT REFERENCES partners(id),
		status TEXT NOT NULL,
		created_count INTEGER NOT NULL DEFAULT 0,
		updated_count INTEGER NOT NULL DEFAULT 0,
		deleted_count INTEGER NOT NULL DEFAULT 0,
		refused_count INTEGER NOT NULL DEFAULT 0,
		total_count INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		error TEXT,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS moderation_events (
		id TEXT PRIMARY KEY,
		old_id TEXT NOT NULL UNIQUE,
		mission_id TEXT REFERENCES missions(id),
		moderator_id TEXT REFERENCES partners(id),
		user_name TEXT,
		initial_status TEXT,
		new_status TEXT NOT NULL,
		new_comment TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
}

// MigrateAnalytics creates the analytics tables when missing
func MigrateAnalytics(ctx context.Context, conn *sqlx.DB) error {
	for _, stmt := range analyticsSchema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate analytics store: %w", err)
		}
	}
	return nil
}
