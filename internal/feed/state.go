// Package feed implements the paginated photo feed: the controller that owns
// query and paging state, the debounced scroll trigger, and the projection of
// that state into what a client renders.
package feed

import (
	"context"

	"github.com/photofeed/server/internal/async"
	"github.com/photofeed/server/internal/models"
)

const (
	DefaultPageSize      = 100
	DefaultDebounceDelay = 1000 // milliseconds
)

// PhotoSource supplies pages of photos to the controller
type PhotoSource interface {
	SearchPhotos(ctx context.Context, query string, page, perPage int) (*models.PhotosPage, error)
	GetRecentPhotos(ctx context.Context, page, perPage int) (*models.PhotosPage, error)
}

// State is an immutable snapshot of a controller. AllPhotos is shared between
// snapshots and must not be modified.
type State struct {
	QueryInput         string
	AllPhotos          []models.Photo
	LoadResult         async.Async[[]models.Photo]
	LastScrollPosition int
	CurrentPage        int
}

// InitialState is the state of a controller that has not fetched anything
func InitialState() State {
	return State{
		AllPhotos:   []models.Photo{},
		LoadResult:  async.Uninitialized[[]models.Photo](),
		CurrentPage: 1,
	}
}

// PageEvent describes a successfully loaded page. Total is the result count
// reported by the source.
type PageEvent struct {
	Query  string
	Page   int
	Total  int
	Photos []models.Photo
}

// PageObserver is told about every successfully loaded page. It is called on
// the controller's event loop and must not block.
type PageObserver interface {
	PageLoaded(ctx context.Context, event PageEvent)
}

// StateListener receives every published state with its projection. It is
// called on the controller's event loop and must not block.
type StateListener func(state State, view View)
