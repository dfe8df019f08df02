package repository

import (
	"context"

	"github.com/photofeed/server/internal/models"
)

// PhotoCacheRepositoryPostgres handles the photo cache for PostgreSQL
type PhotoCacheRepositoryPostgres struct {
	db DBTX
}

// NewPhotoCacheRepositoryPostgres creates a new PhotoCacheRepositoryPostgres
func NewPhotoCacheRepositoryPostgres(db DBTX) *PhotoCacheRepositoryPostgres {
	return &PhotoCacheRepositoryPostgres{db: db}
}

const postgresUpsertPhoto = `
	INSERT INTO photo_cache (id, server, secret, title, fetched_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET
		server = EXCLUDED.server,
		secret = EXCLUDED.secret,
		title = EXCLUDED.title,
		fetched_at = EXCLUDED.fetched_at
`

// Upsert inserts or refreshes photos in one transaction
func (r *PhotoCacheRepositoryPostgres) Upsert(ctx context.Context, photos []models.Photo) error {
	return upsertPhotos(ctx, r.db, postgresUpsertPhoto, photos)
}

// GetByID returns a cached photo, or nil if it was never seen
func (r *PhotoCacheRepositoryPostgres) GetByID(ctx context.Context, id string) (*models.CachedPhoto, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, server, secret, title, fetched_at FROM photo_cache WHERE id = $1`, id)
	return scanCachedPhoto(row)
}

// GetCount returns the number of cached photos
func (r *PhotoCacheRepositoryPostgres) GetCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photo_cache`).Scan(&count)
	return count, err
}
