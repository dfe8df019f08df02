package models

import "strings"

// PhotoSize is a Flickr size suffix.
// See https://www.flickr.com/services/api/misc.urls.html
type PhotoSize string

const (
	Square75     PhotoSize = "_s"
	Square150    PhotoSize = "_q"
	Thumbnail100 PhotoSize = "_t"
	Small240     PhotoSize = "_m"
	Small320     PhotoSize = "_n"
	Small400     PhotoSize = "_w"
	Medium500    PhotoSize = ""
	Medium640    PhotoSize = "_z"
	Medium800    PhotoSize = "_c"
	Large1024    PhotoSize = "_b"
	Large1600    PhotoSize = "_h"
	Large2048    PhotoSize = "_k"
	XLarge3K     PhotoSize = "_3k"
	XLarge4K     PhotoSize = "_4k"
	XLarge5K     PhotoSize = "_5k"
	XLarge6K     PhotoSize = "_6k"
	XLarge8K     PhotoSize = "_8k"
	// Original may be jpg, gif or png depending on the upload.
	Original PhotoSize = "_o"
)

var photoSizesByName = map[string]PhotoSize{
	"square_75":     Square75,
	"square_150":    Square150,
	"thumbnail_100": Thumbnail100,
	"small_240":     Small240,
	"small_320":     Small320,
	"small_400":     Small400,
	"medium_500":    Medium500,
	"medium_640":    Medium640,
	"medium_800":    Medium800,
	"large_1024":    Large1024,
	"large_1600":    Large1600,
	"large_2048":    Large2048,
	"xlarge_3k":     XLarge3K,
	"xlarge_4k":     XLarge4K,
	"xlarge_5k":     XLarge5K,
	"xlarge_6k":     XLarge6K,
	"xlarge_8k":     XLarge8K,
	"original":      Original,
}

// Suffix returns the URL suffix, empty for the medium 500 size.
func (s PhotoSize) Suffix() string {
	return string(s)
}

// ParsePhotoSize maps a case-insensitive name such as "small_400" to a size.
// An empty name means the default medium size.
func ParsePhotoSize(name string) (PhotoSize, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Medium500, nil
	}
	size, ok := photoSizesByName[name]
	if !ok {
		return Medium500, ErrInvalidPhotoSize
	}
	return size, nil
}
