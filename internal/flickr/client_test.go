package flickr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "k3y", BaseURL: srv.URL + "/services/rest/"})
	require.NoError(t, err)
	return c
}

const recentBody = `{"photos":{"page":2,"pages":10,"perpage":3,"total":30,"photo":[
{"id":"1","owner":"o","secret":"s1","server":"65535","farm":66,"title":"One","ispublic":1,"isfriend":0,"isfamily":0},
{"id":"2","owner":"o","secret":"s2","server":"65535","farm":66,"title":"","ispublic":"1","isfriend":false,"isfamily":null}
]},"stat":"ok"}`

func TestClientGetRecent(t *testing.T) {
	var got url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		assert.Equal(t, "/services/rest/", r.URL.Path)
		_, _ = w.Write([]byte(recentBody))
	})

	page, err := c.GetRecent(context.Background(), 2, 3)
	require.NoError(t, err)

	assert.Equal(t, MethodGetRecent, got.Get("method"))
	assert.Equal(t, "2", got.Get("page"))
	assert.Equal(t, "3", got.Get("per_page"))
	assert.Equal(t, "json", got.Get("format"))
	assert.Equal(t, "1", got.Get("nojsoncallback"))
	assert.Equal(t, "k3y", got.Get("api_key"))

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 30, page.Total)
	require.Len(t, page.Photo, 2)
	assert.True(t, bool(page.Photo[0].IsPublic))
	assert.True(t, bool(page.Photo[1].IsPublic))
	assert.False(t, bool(page.Photo[1].IsFamily))
}

func TestClientSearch(t *testing.T) {
	var got url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(recentBody))
	})

	_, err := c.Search(context.Background(), "red fox", 1, 100)
	require.NoError(t, err)
	assert.Equal(t, MethodSearch, got.Get("method"))
	assert.Equal(t, "red fox", got.Get("text"))
	assert.Equal(t, "100", got.Get("per_page"))
}

func TestClientGetInfo(t *testing.T) {
	t.Run("with secret", func(t *testing.T) {
		var got url.Values
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			got = r.URL.Query()
			_, _ = w.Write([]byte(`{"photo":{"id":"42","secret":"abc","server":"7","farm":1,"title":{"_content":"Dune"},"views":"12"},"stat":"ok"}`))
		})

		info, err := c.GetInfo(context.Background(), "42", "abc")
		require.NoError(t, err)
		assert.Equal(t, MethodGetInfo, got.Get("method"))
		assert.Equal(t, "42", got.Get("photo_id"))
		assert.Equal(t, "abc", got.Get("secret"))
		assert.Equal(t, "42", info.ID)
		require.NotNil(t, info.Views)
		assert.Equal(t, "12", *info.Views)
		require.NotNil(t, info.Photo().Title)
		assert.Equal(t, "Dune", *info.Photo().Title)
	})

	t.Run("secret omitted when empty", func(t *testing.T) {
		var got url.Values
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			got = r.URL.Query()
			_, _ = w.Write([]byte(`{"photo":{"id":"42","secret":"abc","server":"7"},"stat":"ok"}`))
		})

		_, err := c.GetInfo(context.Background(), "42", "")
		require.NoError(t, err)
		_, present := got["secret"]
		assert.False(t, present)
	})
}

func TestClientErrors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := c.GetRecent(context.Background(), 1, 100)
		var herr *HTTPError
		require.True(t, errors.As(err, &herr))
		assert.Equal(t, http.StatusServiceUnavailable, herr.StatusCode)
		assert.Equal(t, "HTTP 503 Service Unavailable", err.Error())
	})

	t.Run("invalid json", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`jsonFlickrApi({})`))
		})

		_, err := c.GetRecent(context.Background(), 1, 100)
		var derr *DecodeError
		assert.True(t, errors.As(err, &derr))
	})

	t.Run("api failure body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"stat":"fail","code":100,"message":"Invalid API Key (Key has invalid format)"}`))
		})

		_, err := c.Search(context.Background(), "cats", 1, 100)
		var aerr *APIError
		require.True(t, errors.As(err, &aerr))
		assert.Equal(t, 100, aerr.Code)
		assert.Equal(t, "Invalid API Key (Key has invalid format)", err.Error())
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = c.GetRecent(context.Background(), 1, 100)
		var uerr *url.Error
		assert.True(t, errors.As(err, &uerr))
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.GetRecent(ctx, 1, 100)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClientRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(recentBody))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL, RatePerSecond: 10, Burst: 1})
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.GetRecent(context.Background(), 1, 1)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestAPIKeyTransportLeavesOriginalRequest(t *testing.T) {
	var seen string
	next := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.URL.RawQuery
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "https://api.flickr.com/services/rest/?method=x", nil)
	_, err := newAPIKeyTransport("abc", next).RoundTrip(req)
	require.NoError(t, err)

	assert.Equal(t, "method=x", req.URL.RawQuery)
	q, err := url.ParseQuery(seen)
	require.NoError(t, err)
	assert.Equal(t, "abc", q.Get("api_key"))
	assert.Equal(t, "x", q.Get("method"))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
