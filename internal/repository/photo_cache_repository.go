package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/photofeed/server/internal/models"
)

// PhotoCacheRepository handles the photo cache for SQLite
type PhotoCacheRepository struct {
	db DBTX
}

// NewPhotoCacheRepository creates a new PhotoCacheRepository
func NewPhotoCacheRepository(db DBTX) *PhotoCacheRepository {
	return &PhotoCacheRepository{db: db}
}

const sqliteUpsertPhoto = `
	INSERT INTO photo_cache (id, server, secret, title, fetched_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		server = excluded.server,
		secret = excluded.secret,
		title = excluded.title,
		fetched_at = excluded.fetched_at
`

// Upsert inserts or refreshes photos in one transaction
func (r *PhotoCacheRepository) Upsert(ctx context.Context, photos []models.Photo) error {
	return upsertPhotos(ctx, r.db, sqliteUpsertPhoto, photos)
}

// GetByID returns a cached photo, or nil if it was never seen
func (r *PhotoCacheRepository) GetByID(ctx context.Context, id string) (*models.CachedPhoto, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, server, secret, title, fetched_at FROM photo_cache WHERE id = ?`, id)
	return scanCachedPhoto(row)
}

// GetCount returns the number of cached photos
func (r *PhotoCacheRepository) GetCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photo_cache`).Scan(&count)
	return count, err
}

func upsertPhotos(ctx context.Context, db DBTX, stmt string, photos []models.Photo) error {
	if len(photos) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, p := range photos {
		if _, err := tx.ExecContext(ctx, stmt, p.ID, p.Server, p.Secret, nullString(p.Title), now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func scanCachedPhoto(row *sql.Row) (*models.CachedPhoto, error) {
	var (
		cp    models.CachedPhoto
		title sql.NullString
	)
	err := row.Scan(&cp.ID, &cp.Server, &cp.Secret, &title, &cp.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if title.Valid {
		t := title.String
		cp.Title = &t
	}
	return &cp, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
