package feed

import (
	"time"

	"github.com/photofeed/server/internal/observability"
)

type options struct {
	pageSize      int
	debounceDelay time.Duration
	logger        *observability.Logger
	metrics       *observability.FeedMetrics
	observer      PageObserver
	listener      StateListener
	scheduler     Scheduler
	initialQuery  string
}

// Option configures a Controller
type Option func(*options)

// WithPageSize sets the number of photos requested per page. Values below 1
// are ignored.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithDebounceDelay sets the quiet period before a scroll trigger fires
func WithDebounceDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.debounceDelay = d
		}
	}
}

func WithLogger(l *observability.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *observability.FeedMetrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithPageObserver(p PageObserver) Option {
	return func(o *options) { o.observer = p }
}

func WithStateListener(l StateListener) Option {
	return func(o *options) { o.listener = l }
}

// WithScheduler replaces time.AfterFunc for debounce timers
func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithInitialQuery sets QueryInput before the loop starts
func WithInitialQuery(q string) Option {
	return func(o *options) { o.initialQuery = q }
}
