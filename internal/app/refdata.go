package app

import (
	"context"
	"slices"
	"sync"

	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/services"
	"golang.org/x/sync/errgroup"
)

// RefData caches the genre and artist lists used to populate selections.
//
// Lists are replaced wholesale on reload and never patched. A failed reload
// leaves the previous list in place.
type RefData struct {
	client *services.Client

	mu            sync.RWMutex
	genres        []models.Genre
	artists       []models.Artist
	genresLoaded  bool
	artistsLoaded bool
}

// NewRefData creates an empty cache.
func NewRefData(client *services.Client) *RefData {
	return &RefData{client: client}
}

// ReloadGenres replaces the genre list.
func (r *RefData) ReloadGenres(ctx context.Context) error {
	genres, err := r.client.Genres(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.genres = slices.Clone(genres)
	r.genresLoaded = true
	return nil
}

// ReloadArtists replaces the artist list.
func (r *RefData) ReloadArtists(ctx context.Context) error {
	artists, err := r.client.Artists(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.artists = slices.Clone(artists)
	r.artistsLoaded = true
	return nil
}

// Reload fetches genres and artists concurrently and waits for both.
//
// One failing fetch does not cancel the other.
func (r *RefData) Reload(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return r.ReloadGenres(ctx) })
	g.Go(func() error { return r.ReloadArtists(ctx) })
	return g.Wait()
}

// EnsureLoaded fetches whichever list is still empty, artists first.
func (r *RefData) EnsureLoaded(ctx context.Context) error {
	r.mu.RLock()
	needArtists, needGenres := len(r.artists) == 0, len(r.genres) == 0
	r.mu.RUnlock()

	if needArtists {
		if err := r.ReloadArtists(ctx); err != nil {
			return err
		}
	}
	if needGenres {
		if err := r.ReloadGenres(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Loaded reports whether both lists have been fetched at least once.
func (r *RefData) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.genresLoaded && r.artistsLoaded
}

// Genres returns a copy of the cached genres.
func (r *RefData) Genres() []models.Genre {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.genres)
}

// Artists returns a copy of the cached artists.
func (r *RefData) Artists() []models.Artist {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.artists)
}

// GenreByID looks a genre up by id.
func (r *RefData) GenreByID(id int) (models.Genre, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := slices.IndexFunc(r.genres, func(g models.Genre) bool { return g.ID == id })
	if i < 0 {
		return models.Genre{}, false
	}
	return r.genres[i], true
}

// GenreByName returns the first genre with the given name.
func (r *RefData) GenreByName(name string) (models.Genre, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := slices.IndexFunc(r.genres, func(g models.Genre) bool { return g.Name == name })
	if i < 0 {
		return models.Genre{}, false
	}
	return r.genres[i], true
}

// ArtistByID looks an artist up by id.
func (r *RefData) ArtistByID(id int) (models.Artist, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := slices.IndexFunc(r.artists, func(a models.Artist) bool { return a.ID == id })
	if i < 0 {
		return models.Artist{}, false
	}
	return r.artists[i], true
}

// ArtistByName returns the first artist with the given name.
//
// Names are not unique on the client; callers prefer [RefData.ArtistByID].
func (r *RefData) ArtistByName(name string) (models.Artist, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := slices.IndexFunc(r.artists, func(a models.Artist) bool { return a.Name == name })
	if i < 0 {
		return models.Artist{}, false
	}
	return r.artists[i], true
}

// Clear empties both lists.
func (r *RefData) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.genres, r.artists = nil, nil
	r.genresLoaded, r.artistsLoaded = false, false
}
