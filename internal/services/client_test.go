package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/shared"
	tu "github.com/desertthunder/musicat/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, token string) (*Client, *tu.Backend, *tu.MemoryStore, *tu.Notifications) {
	t.Helper()
	backend := tu.NewBackend()
	srv := backend.Start(t)
	store := tu.NewMemoryStore(token)
	notes := &tu.Notifications{}
	return NewClient(srv.URL, store, WithNotifier(notes)), backend, store, notes
}

func TestClientAuthorization(t *testing.T) {
	t.Run("attaches bearer token when stored", func(t *testing.T) {
		client, backend, _, _ := newTestClient(t, tu.BackendToken)

		_, err := client.Profile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer "+tu.BackendToken, backend.LastAuthorization())
	})

	t.Run("omits header without token", func(t *testing.T) {
		client, backend, _, _ := newTestClient(t, "")

		_, err := client.Health(context.Background())
		require.NoError(t, err)
		assert.Empty(t, backend.LastAuthorization())
	})
}

func TestClientUnauthorized(t *testing.T) {
	t.Run("401 wipes state and runs hook", func(t *testing.T) {
		client, _, store, notes := newTestClient(t, "expired")

		var hookRuns atomic.Int32
		client.OnUnauthorized(func() { hookRuns.Add(1) })

		profile, err := client.Profile(context.Background())

		assert.Nil(t, profile)
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.Equal(t, 1, store.Cleared)
		assert.Equal(t, int32(1), hookRuns.Load())

		token, _ := store.Token(context.Background())
		assert.Empty(t, token)
		assert.Zero(t, notes.Len(), "auth failures redirect instead of notifying")
	})

	t.Run("401 body is never decoded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"user_id": 9, "login": "mallory"}`)
		}))
		t.Cleanup(srv.Close)

		client := NewClient(srv.URL, tu.NewMemoryStore("x"))

		var p models.Profile
		err := client.Do(context.Background(), http.MethodGet, "/profile", nil, &p)

		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.Zero(t, p.UserID)
		assert.Empty(t, p.Login)
	})

	t.Run("public endpoints keep state on 401", func(t *testing.T) {
		client, _, store, notes := newTestClient(t, "old-token")

		_, err := client.Login(context.Background(), models.Credentials{Login: "alice", Password: "wrong"})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, "Invalid login or password", apiErr.Message)
		assert.Zero(t, store.Cleared)
		assert.Equal(t, 1, notes.Len())
	})
}

func TestClientErrors(t *testing.T) {
	t.Run("server message surfaces verbatim", func(t *testing.T) {
		client, backend, _, notes := newTestClient(t, tu.BackendToken)
		backend.Fail(http.MethodPost, "/artists", http.StatusBadRequest, "Artist already exists")

		_, err := client.CreateArtist(context.Background(), models.ArtistFields{Name: "X"})

		assert.ErrorIs(t, err, shared.ErrAPIRequest)
		assert.EqualError(t, err, "Artist already exists")
		require.Equal(t, 1, notes.Len())
		assert.Equal(t, err, notes.All()[0])
	})

	t.Run("falls back to generic message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "<html>oops</html>")
		}))
		t.Cleanup(srv.Close)

		err := NewClient(srv.URL, nil).Do(context.Background(), http.MethodGet, "/genres", nil, nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "request failed", apiErr.Message)
		assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	})

	t.Run("network failure is a transport error", func(t *testing.T) {
		notes := &tu.Notifications{}
		hc := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		client := NewClient("http://catalog.invalid/api", nil, WithHTTPClient(hc), WithNotifier(notes))

		_, err := client.Genres(context.Background())

		assert.ErrorIs(t, err, shared.ErrTransport)
		assert.Equal(t, 1, notes.Len())
	})

	t.Run("unreadable body is a transport error", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
		hc := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

		_, err := NewClient("http://catalog.invalid/api", nil, WithHTTPClient(hc)).Genres(context.Background())
		assert.ErrorIs(t, err, shared.ErrTransport)
	})

	t.Run("malformed success body is a transport error", func(t *testing.T) {
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"not": "a list"}`)),
			Header:     http.Header{},
		}
		hc := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

		_, err := NewClient("http://catalog.invalid/api", nil, WithHTTPClient(hc)).Genres(context.Background())
		assert.ErrorIs(t, err, shared.ErrTransport)
	})

	t.Run("single attempt per call", func(t *testing.T) {
		client, backend, _, _ := newTestClient(t, tu.BackendToken)
		backend.Fail(http.MethodGet, "/tracks", http.StatusServiceUnavailable, "down")

		_, err := client.Tracks(context.Background())
		assert.Error(t, err)
		assert.Equal(t, 1, backend.Hits(http.MethodGet, "/tracks"))
	})
}

func TestClientRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("headers", func(t *testing.T) {
		var got http.Header
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			_, _ = io.WriteString(w, `[]`)
		}))
		t.Cleanup(srv.Close)

		_, err := NewClient(srv.URL, nil, WithUserAgent("musicat/test")).Genres(ctx)
		require.NoError(t, err)
		assert.Equal(t, "application/json", got.Get("Content-Type"))
		assert.Equal(t, "musicat/test", got.Get("User-Agent"))
		assert.Len(t, got.Get("X-Request-ID"), 36)
	})

	t.Run("artist round trip", func(t *testing.T) {
		client, _, _, _ := newTestClient(t, tu.BackendToken)

		id, err := client.CreateArtist(ctx, models.ArtistFields{Name: "X"})
		require.NoError(t, err)
		assert.NotZero(t, id)

		artists, err := client.Artists(ctx)
		require.NoError(t, err)
		require.Len(t, artists, 1)
		assert.Equal(t, models.Artist{ID: id, Name: "X"}, artists[0])

		require.NoError(t, client.DeleteArtist(ctx, id))
		artists, err = client.Artists(ctx)
		require.NoError(t, err)
		assert.Empty(t, artists)
	})

	t.Run("artist tracks count", func(t *testing.T) {
		client, backend, _, _ := newTestClient(t, tu.BackendToken)
		a := backend.SeedArtist("Band")
		g := backend.SeedGenre("Rock")
		backend.SeedTrack("One", a.ID, g.ID, 0, 0)
		backend.SeedTrack("Two", a.ID, g.ID, 0, 0)

		n, err := client.ArtistTracksCount(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("search omits empty filters", func(t *testing.T) {
		client, backend, _, _ := newTestClient(t, tu.BackendToken)

		_, err := client.SearchTracks(ctx, models.SearchFilters{Title: "love", BPM: 120})
		require.NoError(t, err)

		q := backend.LastQuery()
		assert.Equal(t, "love", q.Get("title"))
		assert.Equal(t, "120", q.Get("bpm"))
		assert.False(t, q.Has("artist"))
		assert.False(t, q.Has("genre_id"))
		assert.False(t, q.Has("duration"))
	})

	t.Run("collection membership", func(t *testing.T) {
		client, backend, _, _ := newTestClient(t, tu.BackendToken)
		track := backend.SeedTrack("Song", 0, 0, 0, 0)

		cid, err := client.CreateCollection(ctx, models.CollectionFields{Name: "Mix"})
		require.NoError(t, err)
		require.NoError(t, client.AddCollectionTrack(ctx, cid, track.ID))

		tracks, err := client.CollectionTracks(ctx, cid)
		require.NoError(t, err)
		require.Len(t, tracks, 1)
		assert.False(t, tracks[0].AddedAt.IsZero())

		require.NoError(t, client.RemoveCollectionTrack(ctx, cid, track.ID))
		assert.Empty(t, backend.CollectionTrackIDs(cid))
	})

	t.Run("admin endpoints are forbidden to regular users", func(t *testing.T) {
		client, _, _, _ := newTestClient(t, tu.BackendToken)

		_, err := client.AdminUsers(ctx)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.Status)
	})

	t.Run("rate limit paces calls", func(t *testing.T) {
		client, _, _, _ := newTestClient(t, tu.BackendToken)
		paced := NewClient(client.BaseURL(), tu.NewMemoryStore(tu.BackendToken), WithRateLimit(20))

		start := time.Now()
		for range 3 {
			_, err := paced.Genres(ctx)
			require.NoError(t, err)
		}
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("cancelled context is not notified", func(t *testing.T) {
		client, _, _, notes := newTestClient(t, tu.BackendToken)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.Genres(cctx)
		assert.Error(t, err)
		assert.Zero(t, notes.Len())
	})
}
