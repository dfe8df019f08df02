package repository

import (
	"context"
	"database/sql"

	"github.com/photofeed/server/internal/models"
)

// DBTX is the subset of *sql.DB used by the repositories. Both *sql.DB and
// *observability.TraceDB satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// PhotoAPI is the remote photo service the PhotosRepository delegates to
type PhotoAPI interface {
	GetRecent(ctx context.Context, page, perPage int) (*models.PhotosPage, error)
	Search(ctx context.Context, text string, page, perPage int) (*models.PhotosPage, error)
	GetInfo(ctx context.Context, photoID, secret string) (*models.PhotoInfo, error)
}

// PhotoCacheRepo remembers photos seen in loaded pages
type PhotoCacheRepo interface {
	Upsert(ctx context.Context, photos []models.Photo) error
	GetByID(ctx context.Context, id string) (*models.CachedPhoto, error)
	GetCount(ctx context.Context) (int, error)
}

// SearchHistoryRepo records the queries feed sessions were started with
type SearchHistoryRepo interface {
	Add(ctx context.Context, entry *models.SearchHistoryEntry) error
	Recent(ctx context.Context, limit int) ([]models.SearchHistoryEntry, error)
}
