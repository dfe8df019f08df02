package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/photofeed/server/internal/models"
)

const defaultHistoryLimit = 20

// SearchHistoryRepository handles search history for SQLite
type SearchHistoryRepository struct {
	db DBTX
}

// NewSearchHistoryRepository creates a new SearchHistoryRepository
func NewSearchHistoryRepository(db DBTX) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db}
}

// Add stores entry and sets its ID. A zero SearchedAt is set to now.
func (r *SearchHistoryRepository) Add(ctx context.Context, entry *models.SearchHistoryEntry) error {
	if entry.SearchedAt.IsZero() {
		entry.SearchedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO search_history (query, result_count, searched_at) VALUES (?, ?, ?)`,
		entry.Query, entry.ResultCount, entry.SearchedAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// Recent returns the newest entries first
func (r *SearchHistoryRepository) Recent(ctx context.Context, limit int) ([]models.SearchHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, query, result_count, searched_at FROM search_history
		ORDER BY searched_at DESC, id DESC LIMIT ?`, historyLimit(limit))
	if err != nil {
		return nil, err
	}
	return scanHistory(rows)
}

func historyLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return defaultHistoryLimit
	}
	return limit
}

func scanHistory(rows *sql.Rows) ([]models.SearchHistoryEntry, error) {
	defer rows.Close()

	entries := []models.SearchHistoryEntry{}
	for rows.Next() {
		var e models.SearchHistoryEntry
		if err := rows.Scan(&e.ID, &e.Query, &e.ResultCount, &e.SearchedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
