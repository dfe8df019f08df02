package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/photofeed/server/internal/models"
)

type fakeSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSource) page(page, perPage int) (*models.PhotosPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p := &models.PhotosPage{Page: page, PerPage: perPage, Total: 1000}
	for i := 0; i < perPage; i++ {
		id := (page-1)*perPage + i
		p.Photo = append(p.Photo, models.FlickrPhoto{ID: fmt.Sprintf("%d", id), Server: "1", Secret: fmt.Sprintf("s%d", id)})
	}
	return p, nil
}

func (f *fakeSource) SearchPhotos(ctx context.Context, query string, page, perPage int) (*models.PhotosPage, error) {
	return f.page(page, perPage)
}

func (f *fakeSource) GetRecentPhotos(ctx context.Context, page, perPage int) (*models.PhotosPage, error) {
	return f.page(page, perPage)
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// receive decodes the next message sent to a client
func receive(t *testing.T, c *WSClient) WSMessage {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var msg WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return WSMessage{}
	}
}

type memCache struct {
	mu     sync.Mutex
	photos map[string]models.CachedPhoto
	err    error
}

func newMemCache() *memCache {
	return &memCache{photos: map[string]models.CachedPhoto{}}
}

func (m *memCache) Upsert(ctx context.Context, photos []models.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, p := range photos {
		m.photos[p.ID] = models.CachedPhoto{Photo: p, FetchedAt: time.Now()}
	}
	return nil
}

func (m *memCache) GetByID(ctx context.Context, id string) (*models.CachedPhoto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.photos[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memCache) GetCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.photos), m.err
}

type memHistory struct {
	mu      sync.Mutex
	entries []models.SearchHistoryEntry
}

func (m *memHistory) Add(ctx context.Context, e *models.SearchHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memHistory) Recent(ctx context.Context, limit int) ([]models.SearchHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SearchHistoryEntry(nil), m.entries...), nil
}
