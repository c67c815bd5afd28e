package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is the global database connection
var DB *sql.DB

// Config holds database configuration
type Config struct {
	Path string
}

// Open initializes the database connection and runs migrations.
// Transactions start in immediate mode so read-modify-write sequences
// (rate limit check, quota increment) take the write lock up front and
// cannot lose updates to a concurrent writer.
func Open(cfg Config) error {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	var err error
	DB, err = sql.Open("sqlite", cfg.Path+"?_txlock=immediate&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Run migrations
	if err := migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// migrate runs all database migrations
func migrate() error {
	// Create migrations table
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	// Run each migration
	for _, m := range migrations {
		if err := runMigration(m); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
	}

	return nil
}

type migration struct {
	name string
	up   string
}

func runMigration(m migration) error {
	// Check if already applied
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM migrations WHERE name = ?", m.name).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Already applied
	}

	// Run migration
	if _, err := DB.Exec(m.up); err != nil {
		return err
	}

	// Record migration
	_, err = DB.Exec("INSERT INTO migrations (name) VALUES (?)", m.name)
	return err
}

var migrations = []migration{
	{
		name: "001_create_users",
		up: `
			CREATE TABLE users (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL DEFAULT '',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				last_activity DATETIME DEFAULT CURRENT_TIMESTAMP,
				model_count INTEGER NOT NULL DEFAULT 0,
				is_blocked INTEGER NOT NULL DEFAULT 0,
				block_reason TEXT
			);
			CREATE INDEX idx_users_email ON users(email);
			CREATE INDEX idx_users_last_activity ON users(last_activity);
		`,
	},
	{
		name: "002_create_sessions",
		up: `
			CREATE TABLE sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				email TEXT NOT NULL DEFAULT '',
				name TEXT NOT NULL DEFAULT '',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				last_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
				expires_at DATETIME NOT NULL,
				ip_address TEXT,
				user_agent TEXT,
				is_active INTEGER NOT NULL DEFAULT 1
			);
			CREATE INDEX idx_sessions_user_id ON sessions(user_id);
			CREATE INDEX idx_sessions_expires_at ON sessions(expires_at);
		`,
	},
	{
		name: "003_create_rate_limits",
		up: `
			CREATE TABLE rate_limits (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				identifier TEXT NOT NULL,
				identifier_type TEXT NOT NULL DEFAULT 'ip',
				request_count INTEGER NOT NULL DEFAULT 0,
				window_start DATETIME DEFAULT CURRENT_TIMESTAMP,
				last_request DATETIME DEFAULT CURRENT_TIMESTAMP,
				is_blocked INTEGER NOT NULL DEFAULT 0,
				block_until DATETIME
			);
			CREATE UNIQUE INDEX idx_rate_limits_identifier ON rate_limits(identifier, identifier_type);
		`,
	},
	{
		name: "004_create_page_views",
		up: `
			CREATE TABLE page_views (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
				site TEXT,
				path TEXT,
				ip_address TEXT,
				user_agent TEXT,
				referrer TEXT,
				session_id TEXT,
				user_id TEXT
			);
			CREATE INDEX idx_page_views_timestamp ON page_views(timestamp);
			CREATE INDEX idx_page_views_site ON page_views(site);
			CREATE INDEX idx_page_views_ip_address ON page_views(ip_address);
			CREATE INDEX idx_page_views_session_id ON page_views(session_id);
			CREATE INDEX idx_page_views_user_id ON page_views(user_id);
			CREATE INDEX idx_page_views_timestamp_site ON page_views(timestamp, site);
		`,
	},
	{
		name: "005_create_cad_events",
		up: `
			CREATE TABLE cad_events (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
				user_id TEXT,
				session_id TEXT,
				event_type TEXT,
				prompt TEXT,
				code TEXT,
				success INTEGER NOT NULL DEFAULT 1,
				error_message TEXT,
				duration_ms INTEGER,
				model_size_bytes INTEGER,
				ip_address TEXT
			);
			CREATE INDEX idx_cad_events_timestamp ON cad_events(timestamp);
			CREATE INDEX idx_cad_events_user_id ON cad_events(user_id);
			CREATE INDEX idx_cad_events_session_id ON cad_events(session_id);
		`,
	},
	{
		name: "006_create_generated_models",
		up: `
			CREATE TABLE generated_models (
				id TEXT PRIMARY KEY,
				user_id TEXT,
				session_id TEXT,
				timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
				prompt TEXT NOT NULL DEFAULT '',
				generated_code TEXT NOT NULL DEFAULT '',
				stl_file_path TEXT NOT NULL DEFAULT '',
				stl_file_size INTEGER NOT NULL DEFAULT 0,
				generation_time_ms INTEGER NOT NULL DEFAULT 0,
				ai_generation_time_ms INTEGER,
				execution_time_ms INTEGER,
				success INTEGER NOT NULL DEFAULT 1,
				error_message TEXT,
				download_count INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX idx_generated_models_user_id ON generated_models(user_id);
			CREATE INDEX idx_generated_models_timestamp ON generated_models(timestamp);
		`,
	},
	{
		name: "007_create_admin_logs",
		up: `
			CREATE TABLE admin_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
				action TEXT NOT NULL,
				details TEXT,
				ip_address TEXT,
				success INTEGER NOT NULL DEFAULT 1
			);
			CREATE INDEX idx_admin_logs_timestamp ON admin_logs(timestamp);
		`,
	},
}
