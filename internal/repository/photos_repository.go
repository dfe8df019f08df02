package repository

import (
	"context"

	"github.com/photofeed/server/internal/models"
)

// PhotosRepository is the feed's data source. It passes calls through to the
// remote API without caching.
type PhotosRepository struct {
	api PhotoAPI
}

// NewPhotosRepository creates a new PhotosRepository
func NewPhotosRepository(api PhotoAPI) *PhotosRepository {
	return &PhotosRepository{api: api}
}

// SearchPhotos fetches one page of photos matching query
func (r *PhotosRepository) SearchPhotos(ctx context.Context, query string, page, perPage int) (*models.PhotosPage, error) {
	return r.api.Search(ctx, query, page, perPage)
}

// GetRecentPhotos fetches one page of recent photos
func (r *PhotosRepository) GetRecentPhotos(ctx context.Context, page, perPage int) (*models.PhotosPage, error) {
	return r.api.GetRecent(ctx, page, perPage)
}

// GetPhotoInfo fetches the detail record of a photo
func (r *PhotosRepository) GetPhotoInfo(ctx context.Context, photoID, secret string) (*models.PhotoInfo, error) {
	if photoID == "" {
		return nil, models.ErrEmptyPhotoID
	}
	return r.api.GetInfo(ctx, photoID, secret)
}
