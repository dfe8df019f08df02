package models

import "time"

// HealthResponse is returned by health check
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Sessions  int       `json:"sessions"`
}

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateSessionRequest is the optional body of POST /api/sessions
type CreateSessionRequest struct {
	Query string `json:"query"`
}

// SetQueryRequest is the body of PUT /api/sessions/{id}/query
type SetQueryRequest struct {
	Query string `json:"query"`
}

// ScrollRequest reports the visible range of the photo grid
type ScrollRequest struct {
	FirstVisibleIndex int `json:"firstVisibleIndex"`
	LastVisibleIndex  int `json:"lastVisibleIndex"`
}

// PhotoURLResponse is returned when building a photo URL
type PhotoURLResponse struct {
	ID   string `json:"id"`
	Size string `json:"size"`
	URL  string `json:"url"`
}

// SearchHistoryEntry is one recorded feed session start
type SearchHistoryEntry struct {
	ID          int64     `json:"id"`
	Query       string    `json:"query"`
	ResultCount int       `json:"resultCount"`
	SearchedAt  time.Time `json:"searchedAt"`
}

// SearchHistoryResponse is returned when listing recent searches
type SearchHistoryResponse struct {
	Searches []SearchHistoryEntry `json:"searches"`
}

// CachedPhoto is a photo remembered from a previously loaded page
type CachedPhoto struct {
	Photo
	FetchedAt time.Time `json:"fetchedAt"`
}
