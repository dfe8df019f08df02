package repository

import (
	"fmt"

	"github.com/photofeed/server/internal/observability"
)

// Store bundles the persistence repositories over one traced connection
type Store struct {
	DB       *observability.TraceDB
	Cache    PhotoCacheRepo
	History  SearchHistoryRepo
	Postgres bool
}

// Open connects to PostgreSQL when databaseURL is set, otherwise to the SQLite
// file at databasePath
func Open(databaseURL, databasePath string) (*Store, error) {
	if databaseURL != "" {
		db, err := NewPostgresDB(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		tdb := observability.NewTraceDB(db, "postgresql")
		return &Store{
			DB:       tdb,
			Cache:    NewPhotoCacheRepositoryPostgres(tdb),
			History:  NewSearchHistoryRepositoryPostgres(tdb),
			Postgres: true,
		}, nil
	}

	db, err := NewSQLiteDB(databasePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", databasePath, err)
	}
	tdb := observability.NewTraceDB(db, "sqlite")
	return &Store{
		DB:      tdb,
		Cache:   NewPhotoCacheRepository(tdb),
		History: NewSearchHistoryRepository(tdb),
	}, nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return s.DB.Close()
}
