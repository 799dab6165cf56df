package app

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/services"
	"github.com/desertthunder/musicat/internal/shared"
	tu "github.com/desertthunder/musicat/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type promptRecorder struct {
	mu      sync.Mutex
	answer  bool
	prompts []string
}

func (p *promptRecorder) Confirm(_ context.Context, prompt string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	return p.answer, nil
}

func (p *promptRecorder) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}

type testEnv struct {
	app     *App
	backend *tu.Backend
	store   *tu.MemoryStore
	notes   *tu.Notifications
	prompts *promptRecorder
}

func newTestEnv(t *testing.T, token string) *testEnv {
	t.Helper()
	backend := tu.NewBackend()
	srv := backend.Start(t)
	store := tu.NewMemoryStore(token)
	notes := &tu.Notifications{}
	prompts := &promptRecorder{answer: true}

	client := services.NewClient(srv.URL, store)
	a := New(client, store, Options{Notifier: notes, Confirmer: prompts})
	return &testEnv{app: a, backend: backend, store: store, notes: notes, prompts: prompts}
}

func startedEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t, tu.BackendToken)
	require.NoError(t, env.app.Start(context.Background()))
	env.backend.ResetHits()
	return env
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	t.Run("no token makes no request", func(t *testing.T) {
		env := newTestEnv(t, "")

		err := env.app.Start(ctx)

		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.Zero(t, env.backend.TotalHits())
		assert.False(t, env.app.Session.Authenticated())
	})

	t.Run("loads session then both reference lists", func(t *testing.T) {
		env := newTestEnv(t, tu.BackendToken)
		env.backend.SeedGenre("Rock")
		env.backend.SeedGenre("Jazz")
		env.backend.SeedArtist("Band")

		require.NoError(t, env.app.Start(ctx))

		assert.True(t, env.app.Session.Authenticated())
		assert.Equal(t, "Alice Liddell", env.app.Session.DisplayName())
		assert.True(t, env.app.RefData.Loaded())
		assert.Len(t, env.app.RefData.Genres(), 2)
		assert.Len(t, env.app.RefData.Artists(), 1)
		assert.Equal(t, 1, env.backend.Hits(http.MethodGet, "/genres"))
		assert.Equal(t, 1, env.backend.Hits(http.MethodGet, "/artists"))
	})

	t.Run("invalid token wipes state", func(t *testing.T) {
		env := newTestEnv(t, "stale")
		var signedOut atomic.Int32
		env.app.OnSignedOut(func() { signedOut.Add(1) })

		err := env.app.Start(ctx)

		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.Equal(t, 1, env.store.Cleared)
		assert.Equal(t, int32(1), signedOut.Load())
		assert.False(t, env.app.Session.Authenticated())
		assert.Zero(t, env.backend.Hits(http.MethodGet, "/genres"))
		assert.Zero(t, env.notes.Len())
	})

	t.Run("reference failure keeps previous list", func(t *testing.T) {
		env := startedEnv(t)
		env.backend.SeedGenre("Rock")
		require.NoError(t, env.app.RefData.ReloadGenres(ctx))

		env.backend.Fail(http.MethodGet, "/genres", http.StatusInternalServerError, "boom")
		err := env.app.RefData.Reload(ctx)

		assert.Error(t, err)
		assert.Len(t, env.app.RefData.Genres(), 1)
		assert.Equal(t, 1, env.backend.Hits(http.MethodGet, "/artists"), "artists still fetched")
	})
}

func TestUnauthorizedMidSession(t *testing.T) {
	env := startedEnv(t)
	ctx := context.Background()
	env.backend.SeedGenre("Rock")
	require.NoError(t, env.app.RefData.ReloadGenres(ctx))
	env.app.Modal.Open("Add track", FormFunc(func(context.Context) error { return nil }))

	var signedOut atomic.Int32
	env.app.OnSignedOut(func() { signedOut.Add(1) })
	require.NoError(t, env.store.SetToken(ctx, "revoked"))

	_, err := env.app.Tracks.List(ctx)

	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
	assert.False(t, env.app.Session.Authenticated())
	assert.Empty(t, env.app.RefData.Genres())
	assert.False(t, env.app.Modal.IsOpen())
	assert.Equal(t, int32(1), signedOut.Load())
	token, _ := env.store.Token(ctx)
	assert.Empty(t, token)
}

func TestRouter(t *testing.T) {
	ctx := context.Background()

	t.Run("activate always reloads", func(t *testing.T) {
		env := startedEnv(t)

		require.NoError(t, env.app.Router.Activate(ctx, SectionTracks))
		require.NoError(t, env.app.Router.Activate(ctx, SectionTracks))

		assert.Equal(t, SectionTracks, env.app.Router.Active())
		assert.Equal(t, 2, env.app.Router.Loads(SectionTracks))
		assert.Equal(t, 2, env.backend.Hits(http.MethodGet, "/tracks"))
	})

	t.Run("exactly one active section", func(t *testing.T) {
		env := startedEnv(t)

		require.NoError(t, env.app.Router.Activate(ctx, SectionCollections))

		active := 0
		for _, item := range env.app.Router.Nav() {
			if item.Active {
				active++
				assert.Equal(t, SectionCollections, item.Section)
			}
		}
		assert.Equal(t, 1, active)
	})

	t.Run("admin control follows admin flag", func(t *testing.T) {
		env := startedEnv(t)
		assert.False(t, env.app.Router.Visible(SectionAdmin))
		assert.True(t, env.app.Router.Visible(SectionSearch))

		require.NoError(t, env.app.Router.Activate(ctx, SectionAdmin))
		assert.Zero(t, env.backend.Hits(http.MethodGet, "/admin/users"))

		env.backend.SetAdmin(true)
		_, err := env.app.Session.Load(ctx)
		require.NoError(t, err)
		assert.True(t, env.app.Router.Visible(SectionAdmin))

		require.NoError(t, env.app.Router.Activate(ctx, SectionAdmin))
		assert.Equal(t, 1, env.backend.Hits(http.MethodGet, "/admin/users"))
	})

	t.Run("search section makes no request", func(t *testing.T) {
		env := startedEnv(t)
		require.NoError(t, env.app.Router.Activate(ctx, SectionSearch))
		assert.Zero(t, env.backend.TotalHits())
	})

	t.Run("unknown section", func(t *testing.T) {
		env := startedEnv(t)
		err := env.app.Router.Activate(ctx, Section("nowhere"))
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
	})
}

func TestParseSection(t *testing.T) {
	s, err := ParseSection("collections")
	require.NoError(t, err)
	assert.Equal(t, SectionCollections, s)

	_, err = ParseSection("settings")
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, language.Russian, ParseLocale("ru"))
	assert.Equal(t, language.Russian, ParseLocale("ru-RU"))
	assert.Equal(t, language.English, ParseLocale("en"))
	assert.Equal(t, language.English, ParseLocale("de"))
	assert.Equal(t, language.English, ParseLocale("???"))
}

func TestAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("login persists token and session", func(t *testing.T) {
		env := newTestEnv(t, "")

		p, err := env.app.Auth.Login(ctx, models.Credentials{Login: tu.BackendLogin, Password: tu.BackendPassword})

		require.NoError(t, err)
		assert.Equal(t, tu.BackendLogin, p.Login)
		token, _ := env.store.Token(ctx)
		assert.Equal(t, tu.BackendToken, token)
		assert.True(t, env.app.Session.Authenticated())
		assert.Contains(t, env.notes.Messages(), "Signed in as Alice Liddell")
	})

	t.Run("bad credentials surface server message", func(t *testing.T) {
		env := newTestEnv(t, "")

		_, err := env.app.Auth.Login(ctx, models.Credentials{Login: tu.BackendLogin, Password: "nope"})

		require.Error(t, err)
		assert.Equal(t, "Invalid login or password", err.Error())
		assert.False(t, env.app.Session.Authenticated())
	})

	t.Run("blank credentials are rejected locally", func(t *testing.T) {
		env := newTestEnv(t, "")

		_, err := env.app.Auth.Login(ctx, models.Credentials{Login: " "})

		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Zero(t, env.backend.TotalHits())
		assert.Equal(t, 1, env.notes.Len())
	})

	t.Run("register", func(t *testing.T) {
		env := newTestEnv(t, "")

		err := env.app.Auth.Register(ctx, models.Registration{Login: "bob", Password: "pw", Email: "bob@example.com"})
		require.NoError(t, err)

		_, err = env.app.Auth.Login(ctx, models.Credentials{Login: "bob", Password: "pw"})
		assert.NoError(t, err)
	})

	t.Run("logout wipes everything", func(t *testing.T) {
		env := startedEnv(t)
		var signedOut bool
		env.app.OnSignedOut(func() { signedOut = true })

		require.NoError(t, env.app.Auth.Logout(ctx))

		token, _ := env.store.Token(ctx)
		assert.Empty(t, token)
		assert.False(t, env.app.Session.Authenticated())
		assert.True(t, signedOut)
	})

	t.Run("status without token", func(t *testing.T) {
		env := newTestEnv(t, "")
		status, err := env.app.Auth.Status(ctx)
		require.NoError(t, err)
		assert.False(t, status.SignedIn)
	})

	t.Run("status with opaque token", func(t *testing.T) {
		env := newTestEnv(t, tu.BackendToken)
		status, err := env.app.Auth.Status(ctx)
		require.NoError(t, err)
		assert.True(t, status.SignedIn)
		assert.Nil(t, status.Claims)
	})
}

func TestProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("staged avatar is only a preview", func(t *testing.T) {
		env := startedEnv(t)

		env.app.Profile.StageAvatar("https://img.example.com/a.png")

		assert.Equal(t, "https://img.example.com/a.png", env.app.Profile.AvatarURL())
		assert.Empty(t, env.backend.Profile().AvatarURL)
		assert.Zero(t, env.backend.TotalHits())
	})

	t.Run("save sends staged avatar and reloads", func(t *testing.T) {
		env := startedEnv(t)
		env.app.Profile.StageAvatar("https://img.example.com/a.png")

		fields := env.app.Profile.Form()
		fields.FirstName = "Alicia"
		p, err := env.app.Profile.Save(ctx, fields)

		require.NoError(t, err)
		assert.Equal(t, "Alicia", p.FirstName)
		assert.Equal(t, "https://img.example.com/a.png", env.backend.Profile().AvatarURL)
		assert.Equal(t, 1, env.backend.Hits(http.MethodPut, "/profile"))
		assert.Equal(t, 1, env.backend.Hits(http.MethodGet, "/profile"))
		assert.Equal(t, "Alicia Liddell", env.app.Session.DisplayName())
	})

	t.Run("missing email is rejected locally", func(t *testing.T) {
		env := startedEnv(t)

		_, err := env.app.Profile.Save(ctx, models.ProfileFields{FirstName: "A"})

		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Zero(t, env.backend.TotalHits())
	})
}

func TestAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("non admin is refused without a request", func(t *testing.T) {
		env := startedEnv(t)

		_, err := env.app.Admin.Users(ctx)
		assert.ErrorIs(t, err, shared.ErrForbidden)
		_, err = env.app.Admin.Audit(ctx)
		assert.ErrorIs(t, err, shared.ErrForbidden)
		assert.Zero(t, env.backend.TotalHits())
	})

	t.Run("tabs load their data", func(t *testing.T) {
		env := newTestEnv(t, tu.BackendToken)
		env.backend.SetAdmin(true)
		require.NoError(t, env.app.Start(ctx))
		env.backend.SeedAudit("INSERT", "tracks", `{"title": "One"}`)

		require.NoError(t, env.app.Admin.SwitchTab(ctx, AdminAudit))

		assert.Equal(t, AdminAudit, env.app.Admin.Tab())
		table := env.app.Admin.Table()
		require.Len(t, table.Rows, 1)
		assert.Equal(t, `{"title":"One"}`, table.Rows[0][6])

		require.NoError(t, env.app.Admin.Load(ctx))
		assert.Equal(t, AdminUsers, env.app.Admin.Tab())
		assert.Len(t, env.app.Admin.Table().Rows, 1)
	})

	t.Run("unknown tab", func(t *testing.T) {
		env := startedEnv(t)
		err := env.app.Admin.SwitchTab(ctx, AdminTab("billing"))
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("load uses cached genres", func(t *testing.T) {
		env := newTestEnv(t, tu.BackendToken)
		env.backend.SeedGenre("Rock")
		require.NoError(t, env.app.Start(ctx))
		env.backend.ResetHits()

		env.app.Search.Load()

		assert.Len(t, env.app.Search.GenreOptions(), 1)
		assert.Zero(t, env.backend.TotalHits())
	})

	t.Run("search then reset", func(t *testing.T) {
		env := startedEnv(t)
		g := env.backend.SeedGenre("Rock")
		a := env.backend.SeedArtist("Band")
		env.backend.SeedTrack("Love Song", a.ID, g.ID, 120, 200)
		env.backend.SeedTrack("Other", a.ID, g.ID, 90, 100)

		results, err := env.app.Search.Search(ctx, models.SearchFilters{Title: "love"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Love Song", results[0].Title)

		env.app.Search.Reset()
		env.backend.ResetHits()

		got, searched := env.app.Search.Results()
		assert.Empty(t, got)
		assert.False(t, searched)
		assert.True(t, env.app.Search.Filters().IsEmpty())
		assert.Zero(t, env.backend.TotalHits())
	})

	t.Run("empty result shows placeholder", func(t *testing.T) {
		env := startedEnv(t)

		_, err := env.app.Search.Search(ctx, models.SearchFilters{Title: "zzz"})
		require.NoError(t, err)

		results, searched := env.app.Search.Results()
		lines := SearchTable(results, searched).Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, NothingFoundText, lines[0][0])
	})
}
