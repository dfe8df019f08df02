package repository

import (
	"context"
	"time"

	"github.com/photofeed/server/internal/models"
)

// SearchHistoryRepositoryPostgres handles search history for PostgreSQL
type SearchHistoryRepositoryPostgres struct {
	db DBTX
}

// NewSearchHistoryRepositoryPostgres creates a new SearchHistoryRepositoryPostgres
func NewSearchHistoryRepositoryPostgres(db DBTX) *SearchHistoryRepositoryPostgres {
	return &SearchHistoryRepositoryPostgres{db: db}
}

// Add stores entry and sets its ID. A zero SearchedAt is set to now.
func (r *SearchHistoryRepositoryPostgres) Add(ctx context.Context, entry *models.SearchHistoryEntry) error {
	if entry.SearchedAt.IsZero() {
		entry.SearchedAt = time.Now().UTC()
	}

	return r.db.QueryRowContext(ctx,
		`INSERT INTO search_history (query, result_count, searched_at) VALUES ($1, $2, $3) RETURNING id`,
		entry.Query, entry.ResultCount, entry.SearchedAt).Scan(&entry.ID)
}

// Recent returns the newest entries first
func (r *SearchHistoryRepositoryPostgres) Recent(ctx context.Context, limit int) ([]models.SearchHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, query, result_count, searched_at FROM search_history
		ORDER BY searched_at DESC, id DESC LIMIT $1`, historyLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanHistory(rows)
}
