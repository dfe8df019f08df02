package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photofeed/server/internal/feed"
	"github.com/photofeed/server/internal/models"
	"github.com/photofeed/server/internal/observability"
)

func TestPageRecorder(t *testing.T) {
	photos := []models.Photo{{ID: "1", Server: "s", Secret: "a"}, {ID: "2", Server: "s", Secret: "b"}}

	t.Run("first page goes to cache and history", func(t *testing.T) {
		cache, history := newMemCache(), &memHistory{}
		rec := NewPageRecorder(cache, history, observability.NopLogger())

		rec.PageLoaded(context.Background(), feed.PageEvent{Query: "owls", Page: 1, Total: 420, Photos: photos})
		rec.Wait()

		n, err := cache.GetCount(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		entries, _ := history.Recent(context.Background(), 10)
		require.Len(t, entries, 1)
		assert.Equal(t, "owls", entries[0].Query)
		assert.Equal(t, 420, entries[0].ResultCount)
	})

	t.Run("later pages only cache", func(t *testing.T) {
		cache, history := newMemCache(), &memHistory{}
		rec := NewPageRecorder(cache, history, observability.NopLogger())

		rec.PageLoaded(context.Background(), feed.PageEvent{Page: 2, Photos: photos})
		rec.Wait()

		entries, _ := history.Recent(context.Background(), 10)
		assert.Empty(t, entries)
		n, _ := cache.GetCount(context.Background())
		assert.Equal(t, 2, n)
	})

	t.Run("survives cancelled feed context", func(t *testing.T) {
		cache, history := newMemCache(), &memHistory{}
		rec := NewPageRecorder(cache, history, observability.NopLogger())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		rec.PageLoaded(ctx, feed.PageEvent{Page: 1, Photos: photos})
		rec.Wait()

		entries, _ := history.Recent(context.Background(), 10)
		assert.Len(t, entries, 1)
		assert.Equal(t, 2, entries[0].ResultCount)
	})

	t.Run("cache errors do not stop history", func(t *testing.T) {
		cache, history := newMemCache(), &memHistory{}
		cache.err = errors.New("locked")
		rec := NewPageRecorder(cache, history, observability.NopLogger())

		rec.PageLoaded(context.Background(), feed.PageEvent{Page: 1, Photos: photos})
		rec.Wait()

		entries, _ := history.Recent(context.Background(), 10)
		assert.Len(t, entries, 1)
	})

	t.Run("nil repositories", func(t *testing.T) {
		rec := NewPageRecorder(nil, nil, observability.NopLogger())
		rec.PageLoaded(context.Background(), feed.PageEvent{Page: 1, Photos: photos})
		rec.Wait()
	})
}
