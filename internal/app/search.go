package app

import (
	"context"
	"slices"
	"sync"

	"github.com/desertthunder/musicat/internal/models"
)

// SearchController runs catalog searches. Searching never mutates anything.
type SearchController struct {
	app *App

	mu       sync.RWMutex
	filters  models.SearchFilters
	results  []models.Track
	searched bool
	genres   []models.Genre
}

// Load fills the genre filter options from the cache without a request.
func (c *SearchController) Load() {
	genres := c.app.RefData.Genres()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.genres = genres
}

// GenreOptions returns the genre choices filled by the last [SearchController.Load].
func (c *SearchController) GenreOptions() []models.Genre {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.genres)
}

// Search queries the catalog; unset filters are not sent.
func (c *SearchController) Search(ctx context.Context, filters models.SearchFilters) ([]models.Track, error) {
	results, err := c.app.Client.SearchTracks(ctx, filters)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = filters
	c.results = slices.Clone(results)
	c.searched = true
	return results, nil
}

// Reset clears filters and results without a request.
func (c *SearchController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = models.SearchFilters{}
	c.results = nil
	c.searched = false
}

// Filters returns the filters of the last search.
func (c *SearchController) Filters() models.SearchFilters {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filters
}

// Results returns the last results and whether a search has run since the last reset.
func (c *SearchController) Results() ([]models.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.results), c.searched
}
