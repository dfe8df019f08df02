package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photofeed/server/internal/models"
)

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.createSession(t, "")

	for _, path := range []string{"/health", "/api/health"} {
		rec := srv.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body models.HealthResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, 1, body.Sessions)
		assert.False(t, body.Timestamp.IsZero())
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/sessions", models.CreateSessionRequest{Query: "cats"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID   string   `json:"id"`
		View viewBody `json:"view"`
	}
	decodeBody(t, rec, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "cats", created.View.QueryInput)
	assert.True(t, created.View.SearchEnabled)
	assert.Equal(t, 1, created.View.CurrentPage)
	assert.Equal(t, "empty", created.View.FeedState.Kind)

	base := "/api/sessions/" + created.ID

	rec = srv.do(t, http.MethodPost, base+"/search", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var view viewBody
	require.Eventually(t, func() bool {
		var ok bool
		view, ok = srv.view(base)
		return ok && view.FeedState.Kind == "photo_grid"
	}, 2*time.Second, 10*time.Millisecond)

	assert.Len(t, view.FeedState.Photos, testPageSize)
	assert.Equal(t, 1, view.CurrentPage)
	require.NotNil(t, view.FeedState.ShouldShowLoadingIndicator)
	assert.False(t, *view.FeedState.ShouldShowLoadingIndicator)
	assert.Equal(t, []string{"cats"}, srv.flickr.Queries())

	rec = srv.do(t, http.MethodPut, base+"/query", models.SetQueryRequest{Query: "dogs"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	view = viewBody{}
	decodeBody(t, rec, &view)
	assert.Equal(t, "dogs", view.QueryInput)
	assert.Len(t, view.FeedState.Photos, testPageSize, "setting the query fetches nothing")

	rec = srv.do(t, http.MethodPost, base+"/more", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Eventually(t, func() bool {
		var ok bool
		view, ok = srv.view(base)
		return ok && view.CurrentPage == 2 && view.SearchEnabled
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, view.FeedState.Photos, 2*testPageSize)

	rec = srv.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = srv.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionScroll(t *testing.T) {
	srv := newTestServer(t, nil)
	s := srv.createSession(t, "")
	base := "/api/sessions/" + s.ID

	rec := srv.do(t, http.MethodPost, base+"/scroll", models.ScrollRequest{FirstVisibleIndex: 3, LastVisibleIndex: 8})
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 3, s.Controller.State().LastScrollPosition)

	rec = srv.do(t, http.MethodPost, base+"/scroll", models.ScrollRequest{FirstVisibleIndex: 5, LastVisibleIndex: 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, base+"/scroll", models.ScrollRequest{FirstVisibleIndex: -1, LastVisibleIndex: 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionCreateAfterShutdown(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.hub.Shutdown()

	rec := srv.do(t, http.MethodPost, "/api/sessions", models.CreateSessionRequest{Query: "late"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body models.ErrorResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, "Server is shutting down", body.Error)
	assert.Zero(t, srv.hub.Len())
}

func TestSessionBadRequests(t *testing.T) {
	srv := newTestServer(t, nil)
	s := srv.createSession(t, "")

	rec := srv.do(t, http.MethodPut, "/api/sessions/"+s.ID+"/query", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPut, "/api/sessions/"+s.ID+"/query", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "query body is required")

	rec = srv.do(t, http.MethodPost, "/api/sessions", nil)
	assert.Equal(t, http.StatusCreated, rec.Code, "create body is optional")

	for _, path := range []string{"/api/sessions/missing/search", "/api/sessions/missing/more"} {
		rec = srv.do(t, http.MethodPost, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		var body models.ErrorResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "Session not found", body.Error)
	}
}

func TestAPIKeyRequired(t *testing.T) {
	srv := newTestServer(t, func(key string) bool { return key == "k" })

	rec := srv.do(t, http.MethodPost, "/api/sessions", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/sessions?apiKey=k", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestVersion(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body VersionResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, Version, body.Version)
	assert.NotEmpty(t, body.GoVersion)
}
