package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/sumifun/order-intake-api/pkg/logger"
)

// Database represents a database connection
type Database struct {
	DB     *sqlx.DB
	logger logger.Logger
}

// New opens the SQLite database file at the given path, creating it if
// needed, and ensures the schema exists.
func New(path string, logger logger.Logger) (*Database, error) {
	db, err := sqlx.Connect("sqlite3", path)

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; a one-connection pool avoids
	// SQLITE_BUSY under concurrent requests and keeps every statement
	// on the same in-memory database in tests.
	db.SetMaxOpenConns(1)

	d := &Database{
		DB:     db,
		logger: logger,
	}

	if err := d.runMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Connected to database", "path", path)

	return d, nil
}

// Ping checks the database connection
func (d *Database) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.DB.Close()
}

// runMigrations creates the orders table on first use. The schema is small
// enough that a migration tool would be overkill.
func (d *Database) runMigrations() error {
	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		quantity INTEGER DEFAULT 1,
		price INTEGER NOT NULL,
		date TEXT NOT NULL,
		status TEXT DEFAULT 'new'
	);
	`

	_, err := d.DB.Exec(schema)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.logger.Info("Database migrations completed successfully")
	return nil
}
