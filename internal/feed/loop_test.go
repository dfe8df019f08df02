package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photofeed/server/internal/observability"
)

func TestLoop(t *testing.T) {
	t.Run("runs posted functions in order", func(t *testing.T) {
		l := NewLoop(observability.NopLogger())
		defer l.Stop()

		var (
			mu  sync.Mutex
			got []int
		)
		done := make(chan struct{})
		for i := 0; i < 10; i++ {
			i := i
			require.True(t, l.Post(func() {
				mu.Lock()
				got = append(got, i)
				mu.Unlock()
			}))
		}
		l.Post(func() { close(done) })

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("loop did not drain")
		}
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
	})

	t.Run("survives a panic", func(t *testing.T) {
		l := NewLoop(observability.NopLogger())
		defer l.Stop()

		done := make(chan struct{})
		l.Post(func() { panic("boom") })
		l.Post(func() { close(done) })

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("loop died after panic")
		}
	})

	t.Run("post after stop is rejected", func(t *testing.T) {
		l := NewLoop(nil)
		l.Stop()
		l.Stop()

		assert.False(t, l.Post(func() {}))
		select {
		case <-l.Done():
		default:
			t.Fatal("done not closed")
		}
	})
}
