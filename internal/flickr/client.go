// Package flickr is a small client for the parts of the Flickr REST API the
// feed uses: recent photos, text search and photo info.
package flickr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/photofeed/server/internal/models"
	"github.com/photofeed/server/internal/observability"
)

const (
	DefaultBaseURL = "https://api.flickr.com/services/rest/"

	MethodGetRecent = "flickr.photos.getRecent"
	MethodSearch    = "flickr.photos.search"
	MethodGetInfo   = "flickr.photos.getInfo"

	maxBodyBytes = 8 << 20
)

// Config configures a Client
type Config struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	// Transport is the base transport; nil means http.DefaultTransport
	Transport http.RoundTripper
}

// Client calls the Flickr REST API
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *observability.Logger
}

// NewClient creates a client. A non-positive RatePerSecond disables limiting.
func NewClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid flickr base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: newAPIKeyTransport(cfg.APIKey, cfg.Transport),
		},
		limiter: limiter,
		logger:  observability.GetLogger().Named("flickr"),
	}, nil
}

// GetRecent fetches a page of the most recent public photos
func (c *Client) GetRecent(ctx context.Context, page, perPage int) (*models.PhotosPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	var resp models.PhotosResponse
	if err := c.call(ctx, MethodGetRecent, params, &resp); err != nil {
		return nil, err
	}
	return &resp.Photos, nil
}

// Search fetches a page of photos matching text
func (c *Client) Search(ctx context.Context, text string, page, perPage int) (*models.PhotosPage, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	var resp models.PhotosResponse
	if err := c.call(ctx, MethodSearch, params, &resp); err != nil {
		return nil, err
	}
	return &resp.Photos, nil
}

// GetInfo fetches the detail record of one photo. secret may be empty.
func (c *Client) GetInfo(ctx context.Context, photoID, secret string) (*models.PhotoInfo, error) {
	params := url.Values{}
	params.Set("photo_id", photoID)
	if secret != "" {
		params.Set("secret", secret)
	}

	var resp models.PhotoInfoResponse
	if err := c.call(ctx, MethodGetInfo, params, &resp); err != nil {
		return nil, err
	}
	return &resp.Photo, nil
}

type status struct {
	Stat    string `json:"stat"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) call(ctx context.Context, method string, params url.Values, out interface{}) error {
	ctx, span := observability.StartClientSpan(ctx, "flickr", method)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		observability.RecordError(span, err)
		return err
	}

	params.Set("method", method)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}
	defer resp.Body.Close()

	c.logger.WithContext(ctx).Debugf("%s -> %d in %s", method, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		herr := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
		observability.RecordError(span, herr)
		return herr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		observability.RecordError(span, err)
		return err
	}

	var st status
	if err := json.Unmarshal(body, &st); err != nil {
		derr := &DecodeError{Method: method, Err: err}
		observability.RecordError(span, derr)
		return derr
	}
	if st.Stat == "fail" {
		aerr := &APIError{Code: st.Code, Message: st.Message}
		observability.RecordError(span, aerr)
		return aerr
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(out); err != nil {
		derr := &DecodeError{Method: method, Err: err}
		observability.RecordError(span, derr)
		return derr
	}

	observability.SetSuccess(span)
	return nil
}
