package app

import (
	"context"
	"slices"
	"sync"

	"github.com/desertthunder/musicat/internal/models"
)

// TrackForm is the data behind the add and edit track modals.
type TrackForm struct {
	ID      int
	Fields  models.TrackFields
	Artists []models.Artist
	Genres  []models.Genre
}

// Editing reports whether the form edits an existing track.
func (f TrackForm) Editing() bool { return f.ID != 0 }

// TrackController manages the user's tracks.
type TrackController struct {
	app *App

	mu     sync.RWMutex
	tracks []models.Track
}

// List fetches the track list and replaces the last fetched one.
func (c *TrackController) List(ctx context.Context) ([]models.Track, error) {
	tracks, err := c.app.Client.Tracks(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.tracks = slices.Clone(tracks)
	c.mu.Unlock()
	return tracks, nil
}

// Tracks returns the last fetched list.
func (c *TrackController) Tracks() []models.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tracks)
}

// Find looks a track up in the last fetched list.
func (c *TrackController) Find(id int) (models.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.IndexFunc(c.tracks, func(t models.Track) bool { return t.ID == id })
	if i < 0 {
		return models.Track{}, false
	}
	return c.tracks[i], true
}

// NewForm prepares an empty track form with artist and genre options.
func (c *TrackController) NewForm(ctx context.Context) (TrackForm, error) {
	if err := c.app.RefData.EnsureLoaded(ctx); err != nil {
		return TrackForm{}, err
	}
	return TrackForm{
		Artists: c.app.RefData.Artists(),
		Genres:  c.app.RefData.Genres(),
	}, nil
}

// EditForm prepares a form prefilled from the last fetched list.
//
// Artist and genre defaults come from the ids the listing carries; when the
// server omits them they fall back to a display name match against the cache.
func (c *TrackController) EditForm(ctx context.Context, id int) (TrackForm, error) {
	track, ok := c.Find(id)
	if !ok {
		return TrackForm{}, c.app.notFound("track", id)
	}

	form, err := c.NewForm(ctx)
	if err != nil {
		return TrackForm{}, err
	}

	form.ID = track.ID
	form.Fields = models.TrackFields{
		Title:       track.Title,
		ArtistID:    c.resolveArtist(track),
		GenreID:     c.resolveGenre(track),
		BPM:         track.BPM,
		DurationSec: track.DurationSec,
	}
	return form, nil
}

func (c *TrackController) resolveArtist(t models.Track) int {
	if t.ArtistID != nil {
		if a, ok := c.app.RefData.ArtistByID(*t.ArtistID); ok {
			return a.ID
		}
	}
	if a, ok := c.app.RefData.ArtistByName(t.ArtistName); ok {
		return a.ID
	}
	return 0
}

func (c *TrackController) resolveGenre(t models.Track) int {
	if t.GenreID != nil {
		if g, ok := c.app.RefData.GenreByID(*t.GenreID); ok {
			return g.ID
		}
	}
	if g, ok := c.app.RefData.GenreByName(t.GenreName); ok {
		return g.ID
	}
	return 0
}

// Create adds a track and reloads the list.
func (c *TrackController) Create(ctx context.Context, fields models.TrackFields) (int, error) {
	if err := fields.Validate(); err != nil {
		return 0, c.app.invalid(err)
	}

	id, err := c.app.Client.CreateTrack(ctx, fields)
	if err != nil {
		return 0, err
	}
	c.app.inform("Track added")

	_, err = c.List(ctx)
	return id, err
}

// Update replaces a track's fields after confirmation and reloads the list.
func (c *TrackController) Update(ctx context.Context, id int, fields models.TrackFields) error {
	if err := fields.Validate(); err != nil {
		return c.app.invalid(err)
	}
	if err := c.app.confirm(ctx, "Save changes to this track?"); err != nil {
		return err
	}

	if err := c.app.Client.UpdateTrack(ctx, id, fields); err != nil {
		return err
	}
	c.app.inform("Track updated")

	_, err := c.List(ctx)
	return err
}

// Save creates or updates depending on form.
func (c *TrackController) Save(ctx context.Context, form TrackForm) error {
	if form.Editing() {
		return c.Update(ctx, form.ID, form.Fields)
	}
	_, err := c.Create(ctx, form.Fields)
	return err
}

// Delete removes a track after confirmation and reloads the list.
func (c *TrackController) Delete(ctx context.Context, id int) error {
	if err := c.app.confirm(ctx, "Are you sure you want to delete this track?"); err != nil {
		return err
	}

	if err := c.app.Client.DeleteTrack(ctx, id); err != nil {
		return err
	}
	c.app.inform("Track deleted")

	_, err := c.List(ctx)
	return err
}
