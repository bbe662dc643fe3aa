package database

import (
	"fmt"

	"go.uber.org/zap"
)

// schema is the full database schema. Statements are idempotent so Init can
// run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		vendor TEXT NOT NULL,
		amount REAL NOT NULL,
		date TEXT NOT NULL,
		category TEXT NOT NULL,
		image_path TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS line_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		expense_id INTEGER NOT NULL,
		item_name TEXT NOT NULL,
		quantity REAL DEFAULT 1,
		unit_price REAL,
		total_price REAL NOT NULL,
		FOREIGN KEY (expense_id) REFERENCES expenses (id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses (user_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_line_items_expense ON line_items (expense_id)`,
}

// Init creates the schema if it does not exist yet.
func (db *DB) Init() error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.logger.Error("Failed to apply schema statement", zap.Error(err))
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	db.logger.Info("Database schema ready")
	return nil
}
