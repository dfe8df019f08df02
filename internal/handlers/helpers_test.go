package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/photofeed/server/internal/models"
	"github.com/photofeed/server/internal/observability"
	"github.com/photofeed/server/internal/repository"
	"github.com/photofeed/server/internal/services"
)

const testPageSize = 10

// stubFlickr serves generated pages and detail records
type stubFlickr struct {
	mu        sync.Mutex
	queries   []string
	infoErr   error
	gotSecret string
}

func (s *stubFlickr) page(query string, page, perPage int) (*models.PhotosPage, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	p := &models.PhotosPage{Page: page, PerPage: perPage, Total: 1000, Pages: 1000 / perPage}
	for i := 0; i < perPage; i++ {
		id := (page-1)*perPage + i
		p.Photo = append(p.Photo, models.FlickrPhoto{
			ID:     fmt.Sprintf("p%d", id),
			Server: "65535",
			Secret: fmt.Sprintf("s%d", id),
			Title:  fmt.Sprintf("photo %d", id),
		})
	}
	return p, nil
}

func (s *stubFlickr) SearchPhotos(ctx context.Context, query string, page, perPage int) (*models.PhotosPage, error) {
	return s.page(query, page, perPage)
}

func (s *stubFlickr) GetRecentPhotos(ctx context.Context, page, perPage int) (*models.PhotosPage, error) {
	return s.page("", page, perPage)
}

func (s *stubFlickr) GetPhotoInfo(ctx context.Context, photoID, secret string) (*models.PhotoInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gotSecret = secret
	if s.infoErr != nil {
		return nil, s.infoErr
	}
	title := "title of " + photoID
	return &models.PhotoInfo{ID: photoID, Secret: secret, Server: "65535", Title: &models.TextContent{Content: &title}}, nil
}

func (s *stubFlickr) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func (s *stubFlickr) Secret() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gotSecret
}

type testServer struct {
	handler  http.Handler
	hub      *services.SessionHub
	store    *repository.Store
	recorder *services.PageRecorder
	flickr   *stubFlickr
}

func newTestServer(t *testing.T, keyCheck func(string) bool) *testServer {
	t.Helper()
	logger := observability.NopLogger()

	store, err := repository.Open("", filepath.Join(t.TempDir(), "photofeed.db"))
	require.NoError(t, err)

	flickr := &stubFlickr{}
	recorder := services.NewPageRecorder(store.Cache, store.History, logger)
	hub := services.NewSessionHub(services.SessionHubConfig{PageSize: testPageSize}, flickr, recorder, nil, logger)
	details, err := services.NewPhotoDetailService(flickr, store.Cache, 16, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		recorder.Wait()
		store.Close()
	})

	return &testServer{
		handler: NewRouter(RouterConfig{
			Sessions:     hub,
			Details:      details,
			Cache:        store.Cache,
			History:      store.History,
			KeyCheck:     keyCheck,
			APIKeyHeader: "X-API-Key",
			Logger:       logger,
		}),
		hub:      hub,
		store:    store,
		recorder: recorder,
		flickr:   flickr,
	}
}

func (s *testServer) createSession(t *testing.T, query string) *services.Session {
	t.Helper()
	session, err := s.hub.Create(query)
	require.NoError(t, err)
	return session
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// view fetches a session view; safe to call from require.Eventually
func (s *testServer) view(path string) (viewBody, bool) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var v viewBody
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &v) != nil {
		return viewBody{}, false
	}
	return v, true
}

type viewBody struct {
	SearchEnabled bool   `json:"searchEnabled"`
	QueryInput    string `json:"queryInput"`
	CurrentPage   int    `json:"currentPage"`
	FeedState     struct {
		Kind                       string         `json:"kind"`
		Photos                     []models.Photo `json:"photos"`
		ShouldShowLoadingIndicator *bool          `json:"shouldShowLoadingIndicator"`
		Error                      string         `json:"error"`
	} `json:"feedState"`
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

var errUpstream = errors.New("flickr unavailable")
