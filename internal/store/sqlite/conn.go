package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) a SQLite database at the given path with WAL
// journal mode and immediate write transactions, then applies the schema.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            email TEXT NOT NULL,
            creation_time TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS settings (
            user_id TEXT PRIMARY KEY REFERENCES users(user_id) ON UPDATE CASCADE ON DELETE CASCADE,
            calorie_goal INTEGER NOT NULL,
            protein_goal REAL NOT NULL,
            carb_goal REAL NOT NULL,
            fat_goal REAL,
            resting_energy INTEGER NOT NULL,
            update_time TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS day_logs (
            user_id TEXT NOT NULL REFERENCES users(user_id) ON UPDATE CASCADE ON DELETE CASCADE,
            log_date TEXT NOT NULL,
            entries TEXT NOT NULL DEFAULT '[]',
            update_time TIMESTAMP NOT NULL,
            PRIMARY KEY(user_id, log_date)
        );`,
		`CREATE TABLE IF NOT EXISTS cache_items (
            user_id TEXT NOT NULL REFERENCES users(user_id) ON UPDATE CASCADE ON DELETE CASCADE,
            name_key TEXT NOT NULL,
            item_id TEXT NOT NULL,
            name TEXT NOT NULL,
            description TEXT,
            calories INTEGER NOT NULL,
            protein REAL NOT NULL,
            carbs REAL NOT NULL,
            fat REAL NOT NULL,
            use_count INTEGER NOT NULL DEFAULT 0,
            last_used TIMESTAMP NOT NULL,
            PRIMARY KEY(user_id, name_key)
        );`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
