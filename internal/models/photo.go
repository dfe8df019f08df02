package models

import (
	"fmt"
	"strings"
)

const (
	// PhotoBaseURL is the static host Flickr serves photo files from.
	PhotoBaseURL = "https://live.staticflickr.com"
	// PhotoFileExtension is the extension used for every size except some originals.
	PhotoFileExtension = "jpg"
)

// Photo is the domain view of a photo. Two photos with the same ID are the
// same photo regardless of the other fields.
type Photo struct {
	ID     string  `json:"id"`
	Server string  `json:"server"`
	Secret string  `json:"secret"`
	Title  *string `json:"title,omitempty"`
}

// PhotoFromFlickr maps a raw API record to a Photo. Blank titles are dropped.
func PhotoFromFlickr(p FlickrPhoto) Photo {
	photo := Photo{
		ID:     p.ID,
		Server: p.Server,
		Secret: p.Secret,
	}
	if strings.TrimSpace(p.Title) != "" {
		title := p.Title
		photo.Title = &title
	}
	return photo
}

// PhotosFromPage maps every record of a page, preserving order.
func PhotosFromPage(page *PhotosPage) []Photo {
	if page == nil {
		return []Photo{}
	}
	photos := make([]Photo, 0, len(page.Photo))
	for _, p := range page.Photo {
		photos = append(photos, PhotoFromFlickr(p))
	}
	return photos
}

// URL builds the display URL for the given size.
func (p Photo) URL(size PhotoSize) string {
	return fmt.Sprintf("%s/%s/%s_%s%s.%s", PhotoBaseURL, p.Server, p.ID, p.Secret, size.Suffix(), PhotoFileExtension)
}

// DefaultURL builds the URL for the 500px medium size.
func (p Photo) DefaultURL() string {
	return p.URL(Medium500)
}

// DisplayTitle returns the title or fallback when the photo has none.
func (p Photo) DisplayTitle(fallback string) string {
	if p.Title == nil {
		return fallback
	}
	return *p.Title
}

// DedupePhotos appends next to existing, dropping any photo whose ID was
// already seen. The first occurrence wins and order is preserved. It returns
// the merged list and how many duplicates were dropped.
func DedupePhotos(existing, next []Photo) ([]Photo, int) {
	merged := make([]Photo, 0, len(existing)+len(next))
	seen := make(map[string]struct{}, len(existing)+len(next))
	dropped := 0

	for _, group := range [][]Photo{existing, next} {
		for _, p := range group {
			if _, ok := seen[p.ID]; ok {
				dropped++
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}

	return merged, dropped
}

// Errors
type PhotoError struct {
	Message string
}

func (e PhotoError) Error() string {
	return e.Message
}

var (
	ErrEmptyPhotoID     = PhotoError{"photo id cannot be empty"}
	ErrPhotoNotFound    = PhotoError{"photo not found"}
	ErrInvalidPhotoSize = PhotoError{"unknown photo size"}
)
