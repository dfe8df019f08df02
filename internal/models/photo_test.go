package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPhoto(id string) Photo {
	return Photo{ID: id, Server: "65535", Secret: "abc123"}
}

func TestPhotoFromFlickr(t *testing.T) {
	t.Run("copies identifiers and title", func(t *testing.T) {
		photo := PhotoFromFlickr(FlickrPhoto{
			ID:     "12345",
			Owner:  "owner",
			Secret: "s3cr3t",
			Server: "65535",
			Farm:   66,
			Title:  "Sunset",
		})

		assert.Equal(t, "12345", photo.ID)
		assert.Equal(t, "65535", photo.Server)
		assert.Equal(t, "s3cr3t", photo.Secret)
		require.NotNil(t, photo.Title)
		assert.Equal(t, "Sunset", *photo.Title)
	})

	t.Run("drops blank titles", func(t *testing.T) {
		photo := PhotoFromFlickr(FlickrPhoto{ID: "1", Title: "   "})
		assert.Nil(t, photo.Title)
		assert.Equal(t, "untitled", photo.DisplayTitle("untitled"))
	})
}

func TestPhotosFromPage(t *testing.T) {
	t.Run("keeps record order", func(t *testing.T) {
		page := &PhotosPage{Photo: []FlickrPhoto{{ID: "b"}, {ID: "a"}, {ID: "c"}}}

		photos := PhotosFromPage(page)

		require.Len(t, photos, 3)
		assert.Equal(t, "b", photos[0].ID)
		assert.Equal(t, "a", photos[1].ID)
		assert.Equal(t, "c", photos[2].ID)
	})

	t.Run("nil page yields empty slice", func(t *testing.T) {
		photos := PhotosFromPage(nil)
		assert.NotNil(t, photos)
		assert.Empty(t, photos)
	})
}

func TestPhoto_URL(t *testing.T) {
	photo := testPhoto("12345")

	assert.Equal(t, "https://live.staticflickr.com/65535/12345_abc123.jpg", photo.DefaultURL())
	assert.Equal(t, "https://live.staticflickr.com/65535/12345_abc123_w.jpg", photo.URL(Small400))
	assert.Equal(t, "https://live.staticflickr.com/65535/12345_abc123_o.jpg", photo.URL(Original))
}

func TestParsePhotoSize(t *testing.T) {
	t.Run("maps names case-insensitively", func(t *testing.T) {
		size, err := ParsePhotoSize("Small_400")
		require.NoError(t, err)
		assert.Equal(t, Small400, size)
	})

	t.Run("empty name is medium", func(t *testing.T) {
		size, err := ParsePhotoSize("")
		require.NoError(t, err)
		assert.Equal(t, Medium500, size)
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		_, err := ParsePhotoSize("huge")
		assert.ErrorIs(t, err, ErrInvalidPhotoSize)
	})
}

func TestDedupePhotos(t *testing.T) {
	t.Run("first occurrence wins and order is kept", func(t *testing.T) {
		first := testPhoto("1")
		title := "later copy"
		dup := Photo{ID: "1", Server: "other", Secret: "other", Title: &title}

		merged, dropped := DedupePhotos(
			[]Photo{first, testPhoto("2")},
			[]Photo{testPhoto("3"), dup, testPhoto("2"), testPhoto("4")},
		)

		require.Len(t, merged, 4)
		assert.Equal(t, []string{"1", "2", "3", "4"}, ids(merged))
		assert.Equal(t, first, merged[0])
		assert.Equal(t, 2, dropped)
	})

	t.Run("duplicates within a single page are removed", func(t *testing.T) {
		merged, dropped := DedupePhotos(nil, []Photo{testPhoto("a"), testPhoto("a")})
		assert.Equal(t, []string{"a"}, ids(merged))
		assert.Equal(t, 1, dropped)
	})
}

func TestPhotoInfo_Photo(t *testing.T) {
	raw := `{"id":"1","secret":"s","server":"2","farm":3,"title":{"_content":"Beautiful Sunset"},
		"visibility":{"ispublic":1,"isfriend":0,"isfamily":0},"isfavorite":0}`

	var info PhotoInfo
	require.NoError(t, json.Unmarshal([]byte(raw), &info))

	photo := info.Photo()
	assert.Equal(t, "1", photo.ID)
	require.NotNil(t, photo.Title)
	assert.Equal(t, "Beautiful Sunset", *photo.Title)
	require.NotNil(t, info.Visibility)
	assert.True(t, bool(info.Visibility.IsPublic))
	require.NotNil(t, info.IsFavorite)
	assert.False(t, bool(*info.IsFavorite))
	assert.Nil(t, info.Owner)
}

func ids(photos []Photo) []string {
	out := make([]string, 0, len(photos))
	for _, p := range photos {
		out = append(out, p.ID)
	}
	return out
}
