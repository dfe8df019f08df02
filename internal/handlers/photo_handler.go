package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/photofeed/server/internal/models"
	"github.com/photofeed/server/internal/observability"
	"github.com/photofeed/server/internal/repository"
	"github.com/photofeed/server/internal/services"
)

// PhotoHandler serves photo details and URLs
type PhotoHandler struct {
	details *services.PhotoDetailService
	cache   repository.PhotoCacheRepo
	logger  *observability.Logger
}

// NewPhotoHandler creates a new PhotoHandler. cache may be nil, in which case
// URLs can only be built from explicit server and secret parameters.
func NewPhotoHandler(details *services.PhotoDetailService, cache repository.PhotoCacheRepo, logger *observability.Logger) *PhotoHandler {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &PhotoHandler{details: details, cache: cache, logger: logger.Named("photos_api")}
}

// GetDetails loads the detail record of a photo
// @Summary Get photo details
// @Description Returns the detail state: success with the photo record, or error with a message.
// @Tags photos
// @Produce json
// @Param id path string true "Photo ID"
// @Param secret query string false "Photo secret, looked up in the cache when omitted"
// @Success 200 {object} services.DetailState
// @Failure 502 {object} services.DetailState
// @Router /api/photos/{id} [get]
func (h *PhotoHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state := h.details.Load(r.Context(), id, r.URL.Query().Get("secret"))

	status := http.StatusOK
	if state.Kind == services.DetailError {
		status = http.StatusBadGateway
	}
	respondJSON(w, status, state)
}

// GetURL builds the display URL of a photo
// @Summary Build photo URL
// @Tags photos
// @Produce json
// @Param id path string true "Photo ID"
// @Param size query string false "Size name such as small_400 (default medium_500)"
// @Param server query string false "Server id, looked up in the cache when omitted"
// @Param secret query string false "Photo secret, looked up in the cache when omitted"
// @Success 200 {object} models.PhotoURLResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/photos/{id}/url [get]
func (h *PhotoHandler) GetURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sizeName := q.Get("size")
	size, err := models.ParsePhotoSize(sizeName)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown photo size: "+sizeName)
		return
	}

	photo := models.Photo{ID: chi.URLParam(r, "id"), Server: q.Get("server"), Secret: q.Get("secret")}
	if photo.Server == "" || photo.Secret == "" {
		cached, err := h.cachedPhoto(r, photo.ID)
		if err != nil {
			if errors.Is(err, models.ErrPhotoNotFound) {
				respondError(w, http.StatusNotFound, "Photo not found")
				return
			}
			h.logger.WithContext(r.Context()).Errorf("photo cache lookup: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to look up photo")
			return
		}
		photo = cached.Photo
	}

	if sizeName == "" {
		sizeName = "medium_500"
	}
	respondJSON(w, http.StatusOK, models.PhotoURLResponse{
		ID:   photo.ID,
		Size: sizeName,
		URL:  photo.URL(size),
	})
}

func (h *PhotoHandler) cachedPhoto(r *http.Request, id string) (*models.CachedPhoto, error) {
	if h.cache == nil {
		return nil, models.ErrPhotoNotFound
	}
	cached, err := h.cache.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if cached == nil {
		return nil, models.ErrPhotoNotFound
	}
	return cached, nil
}
