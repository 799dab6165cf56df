package app

import (
	"context"
	"fmt"

	"github.com/desertthunder/musicat/internal/models"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// ArtistController manages the user's artists. Its list is the [RefData] artist cache.
type ArtistController struct {
	app *App
}

// List reloads the artist cache and returns it.
func (c *ArtistController) List(ctx context.Context) ([]models.Artist, error) {
	if err := c.app.RefData.ReloadArtists(ctx); err != nil {
		return nil, err
	}
	return c.app.RefData.Artists(), nil
}

// Artists returns the cached list without a request.
func (c *ArtistController) Artists() []models.Artist {
	return c.app.RefData.Artists()
}

// Create adds an artist and reloads the list.
func (c *ArtistController) Create(ctx context.Context, fields models.ArtistFields) (int, error) {
	if err := fields.Validate(); err != nil {
		return 0, c.app.invalid(err)
	}

	id, err := c.app.Client.CreateArtist(ctx, fields)
	if err != nil {
		return 0, err
	}
	c.app.inform("Artist added")

	_, err = c.List(ctx)
	return id, err
}

// EditForm returns the current values of a cached artist.
func (c *ArtistController) EditForm(id int) (models.ArtistFields, error) {
	a, ok := c.app.RefData.ArtistByID(id)
	if !ok {
		return models.ArtistFields{}, c.app.notFound("artist", id)
	}
	return models.ArtistFields{Name: a.Name}, nil
}

// Update renames an artist after confirmation and reloads the list.
func (c *ArtistController) Update(ctx context.Context, id int, fields models.ArtistFields) error {
	if err := fields.Validate(); err != nil {
		return c.app.invalid(err)
	}
	if err := c.app.confirm(ctx, "Save changes to this artist?"); err != nil {
		return err
	}

	if err := c.app.Client.UpdateArtist(ctx, id, fields); err != nil {
		return err
	}
	c.app.inform("Artist updated")

	_, err := c.List(ctx)
	return err
}

// DeletePrompt fetches the dependent track count and composes the confirmation.
func (c *ArtistController) DeletePrompt(ctx context.Context, id int) (string, int, error) {
	count, err := c.app.Client.ArtistTracksCount(ctx, id)
	if err != nil {
		return "", 0, err
	}
	return ArtistDeletePrompt(c.app.locale, count), count, nil
}

// Delete removes an artist and its tracks.
//
// The prompt names the dependent track count. After a confirmed delete the
// artist list is reloaded, and the track list too when tracks went with it.
func (c *ArtistController) Delete(ctx context.Context, id int) error {
	prompt, count, err := c.DeletePrompt(ctx, id)
	if err != nil {
		return err
	}
	if err := c.app.confirm(ctx, prompt); err != nil {
		return err
	}

	if err := c.app.Client.DeleteArtist(ctx, id); err != nil {
		return err
	}
	c.app.inform("Artist deleted")

	if _, err := c.List(ctx); err != nil {
		return err
	}
	if count > 0 {
		if _, err := c.app.Tracks.List(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ArtistDeletePrompt words the artist delete confirmation for count dependent
// tracks, following the plural rules of lang.
func ArtistDeletePrompt(lang language.Tag, count int) string {
	russian := lang == language.Russian
	if count <= 0 {
		if russian {
			return "Удалить этого исполнителя?"
		}
		return "Delete this artist?"
	}

	form := plural.Cardinal.MatchPlural(lang, count, 0, 0, 0, 0)
	if russian {
		noun := "треков"
		switch form {
		case plural.One:
			noun = "трек"
		case plural.Few:
			noun = "трека"
		}
		return fmt.Sprintf("У этого исполнителя %d %s. Удалить исполнителя и все его треки?", count, noun)
	}

	noun := "tracks"
	if form == plural.One {
		noun = "track"
	}
	return fmt.Sprintf("This artist has %d %s. Delete the artist and all of their tracks?", count, noun)
}
