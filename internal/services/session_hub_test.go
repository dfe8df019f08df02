package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photofeed/server/internal/async"
	"github.com/photofeed/server/internal/observability"
)

func newTestHub(t *testing.T, cfg SessionHubConfig, src *fakeSource) *SessionHub {
	t.Helper()
	hub := NewSessionHub(cfg, src, nil, nil, observability.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func createSession(t *testing.T, hub *SessionHub, query string) *Session {
	t.Helper()
	s, err := hub.Create(query)
	require.NoError(t, err)
	return s
}

type viewPayload struct {
	SearchEnabled bool   `json:"searchEnabled"`
	QueryInput    string `json:"queryInput"`
	CurrentPage   int    `json:"currentPage"`
	FeedState     struct {
		Kind   string            `json:"kind"`
		Photos []json.RawMessage `json:"photos"`
	} `json:"feedState"`
}

func TestSessionHub_CreateGetClose(t *testing.T) {
	hub := newTestHub(t, SessionHubConfig{PageSize: 10}, &fakeSource{})

	s := createSession(t, hub, "koi")
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, hub.Len())
	assert.Equal(t, "koi", s.Controller.State().QueryInput)
	assert.Equal(t, 10, s.Controller.PageSize())

	got, err := hub.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, hub.Close(s.ID))
	assert.True(t, s.Controller.Closed())
	assert.Equal(t, 0, hub.Len())

	_, err = hub.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, hub.Close(s.ID), ErrSessionNotFound)
}

func TestSessionHub_PushesFeedState(t *testing.T) {
	hub := newTestHub(t, SessionHubConfig{PageSize: 10}, &fakeSource{})
	s := createSession(t, hub, "")

	client := hub.WS().NewClient("c1", s.ID, nil)
	require.NoError(t, hub.Attach(client))

	first := receive(t, client)
	assert.Equal(t, WSTypeFeedState, first.Type)
	var v viewPayload
	require.NoError(t, json.Unmarshal(first.Payload, &v))
	assert.Equal(t, "empty", v.FeedState.Kind)
	assert.True(t, v.SearchEnabled)

	s.Controller.SubmitSearch()

	var last viewPayload
	require.Eventually(t, func() bool {
		select {
		case data := <-client.Send:
			var msg WSMessage
			if json.Unmarshal(data, &msg) == nil {
				_ = json.Unmarshal(msg.Payload, &last)
			}
		default:
		}
		return last.FeedState.Kind == "photo_grid"
	}, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, last.FeedState.Photos, 10)
	assert.Equal(t, 1, last.CurrentPage)
	assert.Equal(t, 1, hub.WS().GetSessionClientCount(s.ID))
}

func TestSessionHub_AttachUnknownSession(t *testing.T) {
	hub := newTestHub(t, SessionHubConfig{}, &fakeSource{})
	client := hub.WS().NewClient("c1", "missing", nil)
	assert.ErrorIs(t, hub.Attach(client), ErrSessionNotFound)
}

func TestSessionHub_ExpireIdle(t *testing.T) {
	hub := newTestHub(t, SessionHubConfig{IdleTimeout: time.Minute, JanitorInterval: time.Hour}, &fakeSource{})

	now := time.Now()
	hub.now = func() time.Time { return now }

	idle := createSession(t, hub, "")
	watched := createSession(t, hub, "")
	fresh := createSession(t, hub, "")

	client := hub.WS().NewClient("c1", watched.ID, nil)
	require.NoError(t, hub.Attach(client))
	receive(t, client)

	now = now.Add(2 * time.Minute)
	_, err := hub.Get(fresh.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, hub.ExpireIdle())
	assert.True(t, idle.Controller.Closed())
	assert.False(t, watched.Controller.Closed())
	assert.False(t, fresh.Controller.Closed())
	assert.ElementsMatch(t, []string{watched.ID, fresh.ID}, hub.IDs())
}

func TestSessionHub_ExpireDisabled(t *testing.T) {
	hub := newTestHub(t, SessionHubConfig{}, &fakeSource{})
	createSession(t, hub, "")
	assert.Equal(t, 0, hub.ExpireIdle())
	assert.Equal(t, 1, hub.Len())
}

func TestSessionHub_ShutdownClosesAll(t *testing.T) {
	src := &fakeSource{}
	hub := NewSessionHub(SessionHubConfig{}, src, nil, nil, observability.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	a := createSession(t, hub, "")
	b := createSession(t, hub, "x")
	a.Controller.SubmitSearch()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	assert.True(t, a.Controller.Closed())
	assert.True(t, b.Controller.Closed())
	assert.Equal(t, 0, hub.Len())

	late, err := hub.Create("late")
	assert.ErrorIs(t, err, ErrHubClosed)
	assert.Nil(t, late)
	assert.Equal(t, 0, hub.Len())
}

func TestSessionHub_FetchFailureReachesClients(t *testing.T) {
	src := &fakeSource{err: assert.AnError}
	hub := newTestHub(t, SessionHubConfig{PageSize: 10}, src)
	s := createSession(t, hub, "")

	s.Controller.SubmitSearch()
	require.Eventually(t, func() bool {
		return s.Controller.State().LoadResult.Kind() == async.KindFail
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "error", s.Controller.View().Feed.Kind.String())
}
