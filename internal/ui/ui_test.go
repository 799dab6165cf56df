package ui

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/musicat/internal/app"
	"github.com/desertthunder/musicat/internal/services"
	"github.com/desertthunder/musicat/internal/shared"
	tu "github.com/desertthunder/musicat/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, token string, setup func(*tu.Backend)) (*Model, *tu.Backend, *tu.MemoryStore) {
	t.Helper()
	backend := tu.NewBackend()
	if setup != nil {
		setup(backend)
	}
	srv := backend.Start(t)
	store := tu.NewMemoryStore(token)

	a := app.New(services.NewClient(srv.URL, store), store, app.Options{})
	m := NewModel(context.Background(), a, Options{ExportDir: t.TempDir()})
	drain(t, m, m.Init())
	return m, backend, store
}

// drain runs cmd and every command it produces through Update until the chain settles.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for range 100 {
		if cmd == nil {
			return
		}
		_, cmd = m.Update(cmd())
	}
	t.Fatal("command chain did not settle")
}

func press(t *testing.T, m *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := m.Update(msg)
		drain(t, m, cmd)
	}
}

func column(tbl app.Table, col int) []string {
	out := make([]string, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		out = append(out, row[col])
	}
	return out
}

func seedCatalog(b *tu.Backend) {
	artist := b.SeedArtist("Band")
	genre := b.SeedGenre("Rock")
	b.SeedTrack("Intro", artist.ID, genre.ID, 120, 90)
}

func TestStartup(t *testing.T) {
	t.Run("without token opens sign in", func(t *testing.T) {
		m, backend, store := newTestModel(t, "", nil)

		require.NotNil(t, m.form)
		assert.Equal(t, "Sign in", m.form.title)
		assert.True(t, m.app.Modal.IsOpen())
		assert.Zero(t, backend.TotalHits())

		m.form.setValue("Login", tu.BackendLogin)
		m.form.setValue("Password", tu.BackendPassword)
		press(t, m, "enter")

		assert.Nil(t, m.form)
		token, _ := store.Token(context.Background())
		assert.Equal(t, tu.BackendToken, token)
		assert.Equal(t, app.SectionProfile, m.app.Router.Active())
		assert.Contains(t, column(m.current, 1), tu.BackendLogin)
	})

	t.Run("wrong password keeps form open with server message", func(t *testing.T) {
		m, _, _ := newTestModel(t, "", nil)

		m.form.setValue("Login", tu.BackendLogin)
		m.form.setValue("Password", "nope")
		press(t, m, "enter")

		require.NotNil(t, m.form)
		assert.EqualError(t, m.form.err, "Invalid login or password")
		assert.False(t, m.form.submitting)
	})

	t.Run("with token lands on profile", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, nil)

		assert.Nil(t, m.form)
		assert.Equal(t, app.SectionProfile, m.app.Router.Active())
		assert.Equal(t, 1, m.app.Router.Loads(app.SectionProfile))

		view := m.View()
		assert.Contains(t, view, "1 Profile")
		assert.Contains(t, view, "2 My Tracks")
		assert.NotContains(t, view, "5 Admin")
	})
}

func TestNavigation(t *testing.T) {
	t.Run("number keys activate and reload sections", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, seedCatalog)

		press(t, m, "2")
		assert.Equal(t, app.SectionTracks, m.app.Router.Active())
		assert.Equal(t, []string{"Intro"}, column(m.current, 1))

		press(t, m, "2")
		assert.Equal(t, 2, m.app.Router.Loads(app.SectionTracks))

		press(t, m, "r")
		assert.Equal(t, 3, m.app.Router.Loads(app.SectionTracks))
	})

	t.Run("hidden admin section ignores its key", func(t *testing.T) {
		m, backend, _ := newTestModel(t, tu.BackendToken, nil)
		backend.ResetHits()

		press(t, m, "5")

		assert.Equal(t, app.SectionProfile, m.app.Router.Active())
		assert.Zero(t, backend.TotalHits())
	})

	t.Run("admins cycle tabs", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, func(b *tu.Backend) { b.SetAdmin(true) })

		press(t, m, "5")
		require.Equal(t, app.SectionAdmin, m.app.Router.Active())
		assert.Equal(t, app.AdminUsers, m.app.Admin.Tab())

		press(t, m, "t")
		assert.Equal(t, app.AdminTracks, m.app.Admin.Tab())
		press(t, m, "t", "t")
		assert.Equal(t, app.AdminUsers, m.app.Admin.Tab())
	})

	t.Run("empty sections show their placeholder", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, nil)

		press(t, m, "3")

		_, ok := m.selectedID()
		assert.False(t, ok)
		assert.Equal(t, [][]string{{app.NoCollectionsText, "", "", "", ""}}, m.current.Lines())
	})
}

func TestOverlays(t *testing.T) {
	m, _, _ := newTestModel(t, tu.BackendToken, nil)

	t.Run("confirm answers its reply channel", func(t *testing.T) {
		for key, want := range map[string]bool{"y": true, "n": false, "esc": false} {
			reply := make(chan bool, 1)
			m.Update(confirmRequestMsg{prompt: "Delete it?", reply: reply})
			assert.Contains(t, m.View(), "Delete it?")

			press(t, m, key)

			assert.Equal(t, want, <-reply, key)
			assert.Nil(t, m.confirm)
		}
	})

	t.Run("notifications land on the status line", func(t *testing.T) {
		m.Update(notifyMsg{err: errors.New("server exploded")})
		assert.Contains(t, m.renderStatus(), "server exploded")

		m.Update(informMsg{text: "Track added"})
		assert.Contains(t, m.renderStatus(), "Track added")
		assert.Contains(t, m.renderStatus(), "now")
	})

	t.Run("sign out reopens the login form", func(t *testing.T) {
		reply := make(chan bool, 1)
		m.Update(confirmRequestMsg{prompt: "Delete it?", reply: reply})

		m.Update(signedOutMsg{})

		assert.False(t, <-reply)
		require.NotNil(t, m.form)
		assert.Equal(t, "Sign in", m.form.title)
		assert.Contains(t, m.renderStatus(), "Signed out")
	})
}

func TestForms(t *testing.T) {
	t.Run("validation keeps the form open", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, nil)
		press(t, m, "6", "a")
		require.NotNil(t, m.form)

		press(t, m, "enter")
		require.NotNil(t, m.form)
		assert.ErrorIs(t, m.form.err, shared.ErrValidation)

		m.form.setValue("Name", "Band")
		press(t, m, "enter")
		assert.Nil(t, m.form)
		assert.Equal(t, []string{"Band"}, column(m.current, 1))
	})

	t.Run("stale submissions are ignored", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, nil)
		press(t, m, "6", "a")
		f := m.form

		cmd := m.handleSubmitted(formSubmittedMsg{ticket: f.ticket + 1, err: errors.New("late")})

		assert.Nil(t, cmd)
		assert.Same(t, f, m.form)
		assert.NoError(t, f.err)
	})

	t.Run("escape closes the modal", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, nil)
		press(t, m, "6", "a", "esc")

		assert.Nil(t, m.form)
		assert.False(t, m.app.Modal.IsOpen())
	})

	t.Run("track form resolves names and durations", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, func(b *tu.Backend) {
			b.SeedArtist("Band")
			b.SeedGenre("Rock")
		})
		press(t, m, "2", "a")
		require.NotNil(t, m.form)

		m.form.setValue("Title", "Song")
		m.form.setValue("Artist", "Band")
		m.form.setValue("Genre", "Rock")
		m.form.setValue("BPM", "fast")
		press(t, m, "enter")
		require.NotNil(t, m.form)
		assert.ErrorIs(t, m.form.err, shared.ErrValidation)

		m.form.setValue("BPM", "")
		m.form.setValue("Duration", "3:30")
		press(t, m, "enter")
		require.Nil(t, m.form)

		tracks := m.app.Tracks.Tracks()
		require.Len(t, tracks, 1)
		assert.Equal(t, "Song", tracks[0].Title)
		assert.Nil(t, tracks[0].BPM)
		require.NotNil(t, tracks[0].DurationSec)
		assert.Equal(t, 210, *tracks[0].DurationSec)
	})

	t.Run("edit prefills from the listing", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, seedCatalog)
		press(t, m, "2", "e")
		require.NotNil(t, m.form)

		assert.Equal(t, "Edit track", m.form.title)
		assert.Equal(t, "Intro", m.form.value("Title"))
		assert.Equal(t, "Band", m.form.value("Artist"))
		assert.Equal(t, "Rock", m.form.value("Genre"))
		assert.Equal(t, "120", m.form.value("BPM"))
		assert.Equal(t, "1:30", m.form.value("Duration"))
	})

	t.Run("unchanged artist keeps its id when names repeat", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, func(b *tu.Backend) {
			b.SeedArtist("Dup")
			second := b.SeedArtist("Dup")
			genre := b.SeedGenre("Rock")
			b.SeedTrack("Intro", second.ID, genre.ID, 120, 90)
		})
		m.app.SetConfirmer(app.AlwaysConfirm)

		press(t, m, "2", "e")
		require.NotNil(t, m.form)
		assert.Equal(t, "Dup", m.form.value("Artist"))
		m.form.setValue("Title", "Intro (live)")
		press(t, m, "enter")
		require.Nil(t, m.form)

		tracks := m.app.Tracks.Tracks()
		require.Len(t, tracks, 1)
		assert.Equal(t, "Intro (live)", tracks[0].Title)
		require.NotNil(t, tracks[0].ArtistID)
		assert.Equal(t, 2, *tracks[0].ArtistID)

		press(t, m, "e")
		require.NotNil(t, m.form)
		m.form.setValue("Artist", "1")
		press(t, m, "enter")
		require.Nil(t, m.form)

		tracks = m.app.Tracks.Tracks()
		require.NotNil(t, tracks[0].ArtistID)
		assert.Equal(t, 1, *tracks[0].ArtistID)
	})

	t.Run("edit of an uncached row reports outside the update loop", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, func(b *tu.Backend) { b.SeedArtist("Band") })
		press(t, m, "6")
		_, selected := m.selectedID()
		require.True(t, selected)
		m.app.RefData.Clear()

		var posted []tea.Msg
		m.bridge.attach(func(msg tea.Msg) { posted = append(posted, msg) })

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
		assert.Empty(t, posted)
		require.NotNil(t, cmd)

		msg := cmd()
		require.Len(t, posted, 1)
		assert.IsType(t, notifyMsg{}, posted[0])
		ready, ok := msg.(formReadyMsg)
		require.True(t, ok)
		assert.ErrorIs(t, ready.err, shared.ErrNotFound)

		m.Update(msg)
		assert.Nil(t, m.form)
		assert.Contains(t, m.renderStatus(), "not found")
	})

	t.Run("search shows results after submitting", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, seedCatalog)
		press(t, m, "4")
		assert.Empty(t, m.current.Lines())

		press(t, m, "enter")
		m.form.setValue("Title", "intr")
		press(t, m, "enter")

		assert.Equal(t, []string{"Intro"}, column(m.current, 1))
		assert.Equal(t, "intr", m.app.Search.Filters().Title)
	})
}

func TestCollections(t *testing.T) {
	seed := func(b *tu.Backend) {
		seedCatalog(b)
		b.SeedCollection("Mix", true, 3)
	}

	t.Run("enter expands the track panel", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, seed)
		press(t, m, "3", "enter")

		require.NotZero(t, m.panelID)
		assert.Equal(t, app.Expanded, m.app.Association.State(m.panelID))
		assert.Equal(t, []string{"Intro"}, column(m.panelTable, 1))

		press(t, m, "tab")
		assert.True(t, m.panelFocus)

		press(t, m, "tab", "enter")
		assert.Zero(t, m.panelID)
	})

	t.Run("picker adds the track to a collection", func(t *testing.T) {
		m, backend, _ := newTestModel(t, tu.BackendToken, func(b *tu.Backend) {
			seedCatalog(b)
			b.SeedCollection("Empty", false)
		})
		press(t, m, "2", "c")
		require.NotNil(t, m.picker)

		press(t, m, "enter")

		assert.Nil(t, m.picker)
		collections := m.app.Collections.Collections()
		require.Len(t, collections, 1)
		assert.Equal(t, []int{3}, backend.CollectionTrackIDs(collections[0].ID))
	})

	t.Run("export writes every collection", func(t *testing.T) {
		m, _, _ := newTestModel(t, tu.BackendToken, seed)
		press(t, m, "3", "E")

		assert.False(t, m.exporting)
		assert.Contains(t, m.renderStatus(), "Exported 1 of 1 collections")
	})
}

func TestSetTable(t *testing.T) {
	tbl := table.New()

	setTable(&tbl, app.TracksTable(nil))
	assert.Len(t, tbl.Rows(), 1)

	setTable(&tbl, app.Table{Headers: []string{"A", "B"}, Rows: [][]string{{"1", "2"}, {"3", "4"}}})
	assert.Equal(t, []table.Row{{"1", "2"}, {"3", "4"}}, tbl.Rows())
}
