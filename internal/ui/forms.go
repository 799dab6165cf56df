package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/musicat/internal/app"
	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/shared"
)

func (m *Model) loginForm() *formModel {
	var f *formModel
	f = newForm("Sign in", func(ctx context.Context) error {
		creds := models.Credentials{Login: f.value("Login"), Password: f.value("Password")}
		if _, err := m.app.Auth.Login(ctx, creds); err != nil {
			return err
		}
		return m.app.RefData.Reload(ctx)
	})
	f.field("Login", "", "login").secret("Password")
	f.hint = "No account yet? Run `musicat auth register`."
	f.after = func() tea.Cmd { return m.activate(app.SectionProfile) }
	return f
}

func (m *Model) profileForm() *formModel {
	current := m.app.Profile.Form()
	var f *formModel
	f = newForm("Edit profile", func(ctx context.Context) error {
		_, err := m.app.Profile.Save(ctx, models.ProfileFields{
			FirstName: f.value("First name"),
			LastName:  f.value("Last name"),
			Email:     f.value("Email"),
			AvatarURL: f.value("Avatar URL"),
		})
		return err
	})
	f.field("First name", current.FirstName, "").
		field("Last name", current.LastName, "").
		field("Email", current.Email, "you@example.com").
		field("Avatar URL", current.AvatarURL, "https://")
	return f
}

// artistForm reads the artist cache, which may notify, so it runs as a command.
func (m *Model) artistForm(id int) tea.Cmd {
	return func() tea.Msg {
		title, name := "Add artist", ""
		if id != 0 {
			fields, err := m.app.Artists.EditForm(id)
			if err != nil {
				return formReadyMsg{err: err}
			}
			title, name = "Edit artist", fields.Name
		}

		var f *formModel
		f = newForm(title, func(ctx context.Context) error {
			fields := models.ArtistFields{Name: f.value("Name")}
			if id == 0 {
				_, err := m.app.Artists.Create(ctx, fields)
				return err
			}
			return m.app.Artists.Update(ctx, id, fields)
		})
		f.field("Name", name, "artist name")
		return formReadyMsg{form: f}
	}
}

func (m *Model) collectionForm(id int) tea.Cmd {
	return func() tea.Msg {
		form := app.CollectionForm{}
		if id != 0 {
			var err error
			if form, err = m.app.Collections.EditForm(id); err != nil {
				return formReadyMsg{err: err}
			}
		}

		title := "New collection"
		if form.Editing() {
			title = "Edit collection"
		}

		var f *formModel
		f = newForm(title, func(ctx context.Context) error {
			form.Fields = models.CollectionFields{
				Name:       f.value("Name"),
				IsFavorite: parseYes(f.value("Favorite")),
			}
			return m.app.Collections.Save(ctx, form)
		})
		f.field("Name", form.Fields.Name, "collection name").
			field("Favorite", shared.YesNo(form.Fields.IsFavorite), "yes/no")
		f.caption = func() string { return m.app.Collections.SubmitLabel(form) }
		return formReadyMsg{form: f}
	}
}

// trackForm loads reference data before building, so it runs as a command.
func (m *Model) trackForm(id int) tea.Cmd {
	return func() tea.Msg {
		var (
			form app.TrackForm
			err  error
		)
		if id == 0 {
			form, err = m.app.Tracks.NewForm(m.ctx)
		} else {
			form, err = m.app.Tracks.EditForm(m.ctx, id)
		}
		if err != nil {
			return formReadyMsg{err: err}
		}
		return formReadyMsg{form: m.newTrackForm(form)}
	}
}

func (m *Model) newTrackForm(form app.TrackForm) *formModel {
	title := "Add track"
	if form.Editing() {
		title = "Edit track"
	}

	var artist, genre string
	if a, ok := m.app.RefData.ArtistByID(form.Fields.ArtistID); ok {
		artist = a.Name
	}
	if g, ok := m.app.RefData.GenreByID(form.Fields.GenreID); ok {
		genre = g.Name
	}

	// Names are not unique, so untouched fields keep the ids they were filled from.
	artistID, genreID := form.Fields.ArtistID, form.Fields.GenreID
	var f *formModel
	f = newForm(title, func(ctx context.Context) error {
		bpm, err := optionalInt(f.value("BPM"), strconv.Atoi)
		if err != nil {
			return fmt.Errorf("%w: bpm must be a number", shared.ErrValidation)
		}
		duration, err := optionalInt(f.value("Duration"), shared.ParseDuration)
		if err != nil {
			return fmt.Errorf("%w: duration must be m:ss or seconds", shared.ErrValidation)
		}
		form.Fields = models.TrackFields{
			Title:       f.value("Title"),
			ArtistID:    keepOr(artistID, artist, f.value("Artist"), m.artistID),
			GenreID:     keepOr(genreID, genre, f.value("Genre"), m.genreID),
			BPM:         bpm,
			DurationSec: duration,
		}
		return m.app.Tracks.Save(ctx, form)
	})

	var bpm, duration string
	if form.Fields.BPM != nil {
		bpm = strconv.Itoa(*form.Fields.BPM)
	}
	if form.Fields.DurationSec != nil {
		duration = shared.FormatDuration(*form.Fields.DurationSec)
	}

	f.field("Title", form.Fields.Title, "track title").
		field("Artist", artist, names(form.Artists, func(a models.Artist) string { return a.Name })).
		field("Genre", genre, names(form.Genres, func(g models.Genre) string { return g.Name })).
		field("BPM", bpm, "optional").
		field("Duration", duration, "m:ss, optional")
	return f
}

func (m *Model) searchForm() *formModel {
	current := m.app.Search.Filters()
	var f *formModel
	f = newForm("Search tracks", func(ctx context.Context) error {
		bpm, err := optionalInt(f.value("BPM"), strconv.Atoi)
		if err != nil {
			return fmt.Errorf("%w: bpm must be a number", shared.ErrValidation)
		}
		duration, err := optionalInt(f.value("Duration"), shared.ParseDuration)
		if err != nil {
			return fmt.Errorf("%w: duration must be m:ss or seconds", shared.ErrValidation)
		}
		filters := models.SearchFilters{
			Title:   f.value("Title"),
			Artist:  f.value("Artist"),
			GenreID: m.genreID(f.value("Genre")),
		}
		if bpm != nil {
			filters.BPM = *bpm
		}
		if duration != nil {
			filters.DurationSec = *duration
		}
		_, err = m.app.Search.Search(ctx, filters)
		return err
	})

	var genre, bpm, duration string
	if g, ok := m.app.RefData.GenreByID(current.GenreID); ok {
		genre = g.Name
	}
	if current.BPM > 0 {
		bpm = strconv.Itoa(current.BPM)
	}
	if current.DurationSec > 0 {
		duration = shared.FormatDuration(current.DurationSec)
	}

	f.field("Title", current.Title, "any").
		field("Artist", current.Artist, "any").
		field("Genre", genre, names(m.app.Search.GenreOptions(), func(g models.Genre) string { return g.Name })).
		field("BPM", bpm, "any").
		field("Duration", duration, "any")
	return f
}

// keepOr returns id while input still shows the value it was filled with,
// and resolves input otherwise.
func keepOr(id int, filled, input string, resolve func(string) int) int {
	if id != 0 && input == filled {
		return id
	}
	return resolve(input)
}

// artistID accepts an artist id or name. A numeric input is tried as an id first.
func (m *Model) artistID(input string) int {
	if n, err := strconv.Atoi(input); err == nil {
		if a, ok := m.app.RefData.ArtistByID(n); ok {
			return a.ID
		}
	}
	if a, ok := m.app.RefData.ArtistByName(input); ok {
		return a.ID
	}
	return 0
}

// genreID accepts a genre id or name. A numeric input is tried as an id first.
func (m *Model) genreID(input string) int {
	if n, err := strconv.Atoi(input); err == nil {
		if g, ok := m.app.RefData.GenreByID(n); ok {
			return g.ID
		}
	}
	if g, ok := m.app.RefData.GenreByName(input); ok {
		return g.ID
	}
	return 0
}

func optionalInt(s string, parse func(string) (int, error)) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := parse(s)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, shared.ErrInvalidInput
	}
	return &n, nil
}

func parseYes(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes", "true", "1", "★":
		return true
	}
	return false
}

// names joins option names into a placeholder, trimmed to a few entries.
func names[T any](items []T, name func(T) string) string {
	const limit = 4
	out := make([]string, 0, limit)
	for i, item := range items {
		if i == limit {
			out = append(out, "...")
			break
		}
		out = append(out, name(item))
	}
	return strings.Join(out, ", ")
}
