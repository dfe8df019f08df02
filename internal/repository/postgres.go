package repository

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// NewPostgresDB creates and initializes a PostgreSQL database connection
func NewPostgresDB(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := createPostgresTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS photo_cache (
		id TEXT PRIMARY KEY,
		server TEXT NOT NULL,
		secret TEXT NOT NULL,
		title TEXT,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS search_history (
		id BIGSERIAL PRIMARY KEY,
		query TEXT NOT NULL,
		result_count INTEGER NOT NULL DEFAULT 0,
		searched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_search_history_searched_at ON search_history(searched_at);
	`

func createPostgresTables(db *sql.DB) error {
	_, err := db.Exec(postgresSchema)
	return err
}
