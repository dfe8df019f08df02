package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/photofeed/server/internal/models"
	"github.com/photofeed/server/internal/observability"
)

// manualScheduler fires timers only when Advance moves its clock past them
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{s: m, at: m.now + d, f: f}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (m *manualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []func()
	for _, t := range m.timers {
		if !t.stopped && !t.fired && t.at <= m.now {
			t.fired = true
			due = append(due, t.f)
		}
	}
	m.mu.Unlock()

	for _, f := range due {
		f()
	}
}

func (m *manualScheduler) Armed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type sourceCall struct {
	Query   string
	Page    int
	PerPage int
}

// stubSource records calls and answers them with respond. With a non-nil
// gate each call waits for a value on it, or for its context to end.
type stubSource struct {
	mu      sync.Mutex
	calls   []sourceCall
	respond func(sourceCall) (*models.PhotosPage, error)
	gate    chan struct{}
	ctxErr  error
}

func (s *stubSource) SearchPhotos(ctx context.Context, query string, page, perPage int) (*models.PhotosPage, error) {
	return s.handle(ctx, sourceCall{Query: query, Page: page, PerPage: perPage})
}

func (s *stubSource) GetRecentPhotos(ctx context.Context, page, perPage int) (*models.PhotosPage, error) {
	return s.handle(ctx, sourceCall{Page: page, PerPage: perPage})
}

func (s *stubSource) handle(ctx context.Context, c sourceCall) (*models.PhotosPage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	respond, gate := s.respond, s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			s.mu.Lock()
			s.ctxErr = ctx.Err()
			s.mu.Unlock()
			return nil, ctx.Err()
		}
	}
	if respond == nil {
		return pageOf(c.Page, (c.Page-1)*c.PerPage, c.PerPage), nil
	}
	return respond(c)
}

func (s *stubSource) Calls() []sourceCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sourceCall(nil), s.calls...)
}

func (s *stubSource) CtxErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctxErr
}

// pageOf builds a page whose photo ids run from first to first+n-1
func pageOf(page, first, n int) *models.PhotosPage {
	p := &models.PhotosPage{Page: page, PerPage: n, Pages: 10, Total: 10 * n}
	for i := 0; i < n; i++ {
		p.Photo = append(p.Photo, models.FlickrPhoto{
			ID:     fmt.Sprintf("%d", first+i),
			Secret: "s",
			Server: "65535",
			Title:  fmt.Sprintf("photo %d", first+i),
		})
	}
	return p
}

func photoIDs(photos []models.Photo) []string {
	ids := make([]string, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
	}
	return ids
}

func testOptions(extra ...Option) []Option {
	return append([]Option{WithLogger(observability.NopLogger())}, extra...)
}
