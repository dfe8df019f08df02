package services

import (
	"context"
	"sync"
	"time"

	"github.com/photofeed/server/internal/feed"
	"github.com/photofeed/server/internal/models"
	"github.com/photofeed/server/internal/observability"
	"github.com/photofeed/server/internal/repository"
)

const recordTimeout = 10 * time.Second

// PageRecorder persists loaded pages: every photo goes into the cache and the
// first page of each feed is added to the search history. Writes run in the
// background so the feed loop never waits on the database.
type PageRecorder struct {
	cache   repository.PhotoCacheRepo
	history repository.SearchHistoryRepo
	logger  *observability.Logger
	wg      sync.WaitGroup
}

// NewPageRecorder creates a PageRecorder. Either repository may be nil.
func NewPageRecorder(cache repository.PhotoCacheRepo, history repository.SearchHistoryRepo, logger *observability.Logger) *PageRecorder {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &PageRecorder{cache: cache, history: history, logger: logger.Named("recorder")}
}

// PageLoaded implements feed.PageObserver
func (r *PageRecorder) PageLoaded(ctx context.Context, event feed.PageEvent) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		// the feed's context ends with the session; the write should not
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancel()
		r.record(ctx, event)
	}()
}

func (r *PageRecorder) record(ctx context.Context, event feed.PageEvent) {
	ctx, span := observability.StartServiceSpan(ctx, "PageRecorder", "record")
	defer span.End()
	span.SetAttributes(observability.Query(event.Query), observability.Page(event.Page))

	if r.cache != nil {
		if err := r.cache.Upsert(ctx, event.Photos); err != nil {
			observability.RecordError(span, err)
			r.logger.WithContext(ctx).Warnf("cache page %d: %v", event.Page, err)
		}
	}

	if r.history != nil && event.Page == 1 {
		count := event.Total
		if count < len(event.Photos) {
			count = len(event.Photos)
		}
		entry := &models.SearchHistoryEntry{Query: event.Query, ResultCount: count}
		if err := r.history.Add(ctx, entry); err != nil {
			observability.RecordError(span, err)
			r.logger.WithContext(ctx).Warnf("record search %q: %v", event.Query, err)
		}
	}
}

// Wait blocks until queued writes have finished
func (r *PageRecorder) Wait() {
	r.wg.Wait()
}
