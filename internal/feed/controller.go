package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/photofeed/server/internal/async"
	"github.com/photofeed/server/internal/models"
	"github.com/photofeed/server/internal/observability"
)

// ErrClosed is returned by Flush after Close
var ErrClosed = errors.New("feed controller closed")

// Controller owns one feed: the query, the accumulated photos, the page
// cursor and the load state. Public methods may be called from any goroutine;
// they are applied in order on the controller's loop.
type Controller struct {
	source    PhotoSource
	pageSize  int
	loop      *Loop
	debouncer *Debouncer
	logger    *observability.Logger
	metrics   *observability.FeedMetrics
	observer  PageObserver
	listener  StateListener

	// current is only touched on the loop
	current  State
	snapshot atomic.Pointer[State]

	ctx     context.Context
	cancel  context.CancelFunc
	fetches sync.WaitGroup
	closed  atomic.Bool
}

// NewController creates a controller and starts its loop
func NewController(source PhotoSource, opts ...Option) *Controller {
	o := options{
		pageSize:      DefaultPageSize,
		debounceDelay: DefaultDebounceDelay * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = observability.GetLogger().Named("feed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		source:   source,
		pageSize: o.pageSize,
		logger:   o.logger,
		metrics:  o.metrics,
		observer: o.observer,
		listener: o.listener,
		ctx:      ctx,
		cancel:   cancel,
	}

	c.current = InitialState()
	c.current.QueryInput = o.initialQuery
	initial := c.current
	c.snapshot.Store(&initial)

	c.loop = NewLoop(o.logger)
	c.debouncer = NewDebouncer(o.debounceDelay, o.scheduler, c.loop.Post, func() {
		c.metrics.RecordDebounceCollapsed(c.ctx)
	})

	return c
}

// State returns the latest published snapshot
func (c *Controller) State() State {
	return *c.snapshot.Load()
}

// View returns the projection of the latest snapshot
func (c *Controller) View() View {
	return Project(c.State())
}

// PageSize returns the configured page size
func (c *Controller) PageSize() int {
	return c.pageSize
}

// SetQuery replaces the query text. Nothing is fetched.
func (c *Controller) SetQuery(text string) {
	c.post(func() {
		if c.current.QueryInput == text {
			return
		}
		c.current.QueryInput = text
		c.publish()
	})
}

// SubmitSearch starts a fresh feed for the current query and drops any
// scroll trigger armed for the previous one. It is ignored while a page is
// loading.
func (c *Controller) SubmitSearch() {
	c.post(func() {
		if c.current.LoadResult.IsLoading() {
			c.logger.Debug("search submitted while a page is loading, ignoring")
			return
		}
		c.debouncer.Cancel()
		c.current.CurrentPage = 0
		c.requestNextPage()
	})
}

// OnScroll reports the visible range of the grid and arms a debounced page
// request once the last visible index reaches the threshold.
func (c *Controller) OnScroll(firstVisibleIndex, lastVisibleIndex int) {
	c.post(func() {
		if c.current.LastScrollPosition != firstVisibleIndex {
			c.current.LastScrollPosition = firstVisibleIndex
			c.publish()
		}

		threshold := len(c.current.AllPhotos) - c.pageSize/2
		if threshold > 0 && lastVisibleIndex >= threshold {
			c.debouncer.Trigger(c.requestNextPage)
		}
	})
}

// Replay calls fn on the loop with the current state. Calls are ordered with
// StateListener notifications, so fn never sees a state older than one the
// listener has already delivered.
func (c *Controller) Replay(fn StateListener) error {
	if !c.post(func() { fn(c.current, Project(c.current)) }) {
		return ErrClosed
	}
	return nil
}

// LoadMore requests the next page immediately, subject to the loading guard
func (c *Controller) LoadMore() {
	c.post(c.requestNextPage)
}

// Flush waits until every call made before it has been applied
func (c *Controller) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if !c.post(func() { close(done) }) {
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.loop.Done():
		return ErrClosed
	}
}

// Close stops the controller, cancelling any in-flight fetch. It is safe to
// call more than once.
func (c *Controller) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.debouncer.Stop()
	c.cancel()
	c.loop.Stop()
	c.fetches.Wait()
}

// Closed reports whether Close has been called
func (c *Controller) Closed() bool {
	return c.closed.Load()
}

func (c *Controller) post(fn func()) bool {
	if c.closed.Load() {
		return false
	}
	return c.loop.Post(fn)
}

func (c *Controller) requestNextPage() {
	if c.current.LoadResult.IsLoading() {
		c.logger.Debug("waiting for current page to load")
		return
	}

	c.current.CurrentPage++
	page := c.current.CurrentPage
	query := c.current.QueryInput

	c.current.LoadResult = async.Loading[[]models.Photo]()
	if page <= 1 {
		c.current.AllPhotos = []models.Photo{}
	}
	c.publish()

	c.logger.WithFields(map[string]interface{}{"page": page, "query": query}).Debug("requesting page")
	c.metrics.RecordPageRequest(c.ctx, query, page)

	c.fetches.Add(1)
	go c.fetch(query, page)
}

func (c *Controller) fetch(query string, page int) {
	defer c.fetches.Done()

	ctx, span := observability.StartServiceSpan(c.ctx, "feed", "fetchPage")
	span.SetAttributes(observability.Query(query), observability.Page(page))
	defer span.End()

	start := time.Now()
	var (
		resp *models.PhotosPage
		err  error
	)
	if query != "" {
		resp, err = c.source.SearchPhotos(ctx, query, page, c.pageSize)
	} else {
		resp, err = c.source.GetRecentPhotos(ctx, page, c.pageSize)
	}
	if err == nil && resp == nil {
		err = async.ErrOperationFailed
	}
	c.metrics.RecordPageResult(ctx, query, time.Since(start), err)
	observability.RecordError(span, err)

	c.post(func() { c.complete(query, page, resp, err) })
}

func (c *Controller) complete(query string, page int, resp *models.PhotosPage, err error) {
	if err != nil {
		c.logger.WithField("page", page).Warnf("page load failed: %v", err)
		c.current.LoadResult = async.Fail[[]models.Photo](err)
		c.publish()
		return
	}

	photos := models.PhotosFromPage(resp)
	merged, dropped := models.DedupePhotos(c.current.AllPhotos, photos)
	c.metrics.RecordDuplicates(c.ctx, dropped)

	c.current.AllPhotos = merged
	c.current.LoadResult = async.Success(photos, false)
	c.publish()

	if c.observer != nil {
		c.observer.PageLoaded(c.ctx, PageEvent{Query: query, Page: page, Total: resp.Total, Photos: photos})
	}
}

func (c *Controller) publish() {
	s := c.current
	c.snapshot.Store(&s)
	if c.listener != nil {
		c.listener(s, Project(s))
	}
}
