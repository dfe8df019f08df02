package feed

import (
	"encoding/json"

	"github.com/photofeed/server/internal/async"
	"github.com/photofeed/server/internal/models"
)

// FeedKind tags the variant of a FeedState
type FeedKind int

const (
	FeedEmpty FeedKind = iota
	FeedLoading
	FeedError
	FeedPhotoGrid
)

func (k FeedKind) String() string {
	switch k {
	case FeedEmpty:
		return "empty"
	case FeedLoading:
		return "loading"
	case FeedError:
		return "error"
	case FeedPhotoGrid:
		return "photo_grid"
	default:
		return "unknown"
	}
}

// FeedState is what the photo area shows. Photos and ShouldShowLoadingIndicator
// are set only for FeedPhotoGrid, Err only for FeedError.
type FeedState struct {
	Kind                       FeedKind
	Photos                     []models.Photo
	ShouldShowLoadingIndicator bool
	Err                        error
}

func Empty() FeedState {
	return FeedState{Kind: FeedEmpty}
}

func Loading() FeedState {
	return FeedState{Kind: FeedLoading}
}

func Error(err error) FeedState {
	return FeedState{Kind: FeedError, Err: err}
}

func PhotoGrid(photos []models.Photo, showLoading bool) FeedState {
	return FeedState{Kind: FeedPhotoGrid, Photos: photos, ShouldShowLoadingIndicator: showLoading}
}

type feedStateJSON struct {
	Kind                       string          `json:"kind"`
	Photos                     *[]models.Photo `json:"photos,omitempty"`
	ShouldShowLoadingIndicator *bool           `json:"shouldShowLoadingIndicator,omitempty"`
	Error                      string          `json:"error,omitempty"`
}

// MarshalJSON encodes the variant as {"kind": ...} plus its payload
func (f FeedState) MarshalJSON() ([]byte, error) {
	out := feedStateJSON{Kind: f.Kind.String()}
	switch f.Kind {
	case FeedPhotoGrid:
		photos := f.Photos
		if photos == nil {
			photos = []models.Photo{}
		}
		out.Photos = &photos
		show := f.ShouldShowLoadingIndicator
		out.ShouldShowLoadingIndicator = &show
	case FeedError:
		out.Error = errorMessage(f.Err)
	}
	return json.Marshal(out)
}

func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return async.ErrOperationFailed.Error()
	}
	return err.Error()
}

// View is the projection of a State sent to clients
type View struct {
	SearchEnabled bool      `json:"searchEnabled"`
	QueryInput    string    `json:"queryInput"`
	Feed          FeedState `json:"feedState"`
	CurrentPage   int       `json:"currentPage"`
}

// Project derives the view of s. It has no side effects.
func Project(s State) View {
	return View{
		SearchEnabled: !s.LoadResult.IsLoading(),
		QueryInput:    s.QueryInput,
		Feed:          projectFeed(s),
		CurrentPage:   s.CurrentPage,
	}
}

func projectFeed(s State) FeedState {
	switch s.LoadResult.Kind() {
	case async.KindFail:
		return Error(s.LoadResult.Err())
	case async.KindLoading:
		if len(s.AllPhotos) == 0 {
			return Loading()
		}
		return PhotoGrid(s.AllPhotos, true)
	case async.KindSuccess:
		return PhotoGrid(s.AllPhotos, s.LoadResult.IsLoadingMore())
	default:
		return Empty()
	}
}
