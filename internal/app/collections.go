package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/shared"
)

// CollectionForm is the data behind the create and edit collection modals.
type CollectionForm struct {
	ID     int
	Fields models.CollectionFields
}

// Editing reports whether the form edits an existing collection.
func (f CollectionForm) Editing() bool { return f.ID != 0 }

// CollectionController manages the user's collections.
type CollectionController struct {
	app *App

	guard       SubmitGuard
	mu          sync.RWMutex
	collections []models.Collection
}

// List fetches collections with their track counts.
func (c *CollectionController) List(ctx context.Context) ([]models.Collection, error) {
	collections, err := c.app.Client.Collections(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.collections = slices.Clone(collections)
	c.mu.Unlock()
	return collections, nil
}

// Collections returns the last fetched list.
func (c *CollectionController) Collections() []models.Collection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.collections)
}

// Find looks a collection up in the last fetched list.
func (c *CollectionController) Find(id int) (models.Collection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.IndexFunc(c.collections, func(col models.Collection) bool { return col.ID == id })
	if i < 0 {
		return models.Collection{}, false
	}
	return c.collections[i], true
}

// EditForm prefills a form from the last fetched list.
func (c *CollectionController) EditForm(id int) (CollectionForm, error) {
	col, ok := c.Find(id)
	if !ok {
		return CollectionForm{}, c.app.notFound("collection", id)
	}
	return CollectionForm{
		ID:     col.ID,
		Fields: models.CollectionFields{Name: col.Name, IsFavorite: col.IsFavorite},
	}, nil
}

// SubmitLabel is the caption of the submit control for form.
func (c *CollectionController) SubmitLabel(form CollectionForm) string {
	return c.guard.Label(form.Editing())
}

// Save creates or updates a collection, refusing a second submission while
// one is in flight. The guard is released on every path.
func (c *CollectionController) Save(ctx context.Context, form CollectionForm) error {
	if err := c.guard.Begin(); err != nil {
		return err
	}
	defer c.guard.End()

	if err := form.Fields.Validate(); err != nil {
		return c.app.invalid(err)
	}

	if form.Editing() {
		if err := c.app.confirm(ctx, "Save changes to this collection?"); err != nil {
			return err
		}
		if err := c.app.Client.UpdateCollection(ctx, form.ID, form.Fields); err != nil {
			return err
		}
		c.app.inform("Collection updated")
	} else {
		if _, err := c.app.Client.CreateCollection(ctx, form.Fields); err != nil {
			return err
		}
		c.app.inform("Collection created")
	}

	_, err := c.List(ctx)
	return err
}

// Create adds a collection.
func (c *CollectionController) Create(ctx context.Context, fields models.CollectionFields) error {
	return c.Save(ctx, CollectionForm{Fields: fields})
}

// Update edits a collection.
func (c *CollectionController) Update(ctx context.Context, id int, fields models.CollectionFields) error {
	return c.Save(ctx, CollectionForm{ID: id, Fields: fields})
}

// Delete removes a collection after confirmation and reloads the list.
func (c *CollectionController) Delete(ctx context.Context, id int) error {
	if err := c.app.confirm(ctx, "Are you sure you want to delete this collection?"); err != nil {
		return err
	}

	if err := c.app.Client.DeleteCollection(ctx, id); err != nil {
		return err
	}
	c.app.inform("Collection deleted")
	c.app.Association.Collapse(id)

	_, err := c.List(ctx)
	return err
}

// PanelState is the expansion state of a collection's track panel.
type PanelState int

const (
	Collapsed PanelState = iota
	Loading
	Expanded
)

func (s PanelState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Expanded:
		return "expanded"
	default:
		return "collapsed"
	}
}

// Panel is the track panel of one collection.
//
// A failed fetch leaves the panel expanded with Err set.
type Panel struct {
	State  PanelState
	Tracks []models.Track
	Err    error
}

// Association tracks collection panels and their membership edits.
type Association struct {
	app *App

	mu     sync.RWMutex
	panels map[int]*Panel
}

// Panel returns a copy of the panel for collectionID.
func (a *Association) Panel(collectionID int) Panel {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.panels[collectionID]
	if !ok {
		return Panel{State: Collapsed}
	}
	return Panel{State: p.State, Tracks: slices.Clone(p.Tracks), Err: p.Err}
}

// State returns the panel state for collectionID.
func (a *Association) State(collectionID int) PanelState {
	return a.Panel(collectionID).State
}

// Toggle collapses an open panel or expands a closed one.
func (a *Association) Toggle(ctx context.Context, collectionID int) error {
	if a.State(collectionID) == Collapsed {
		return a.Expand(ctx, collectionID)
	}
	a.Collapse(collectionID)
	return nil
}

// Expand moves the panel through loading to expanded, always re-fetching.
func (a *Association) Expand(ctx context.Context, collectionID int) error {
	a.set(collectionID, &Panel{State: Loading})

	tracks, err := a.app.Client.CollectionTracks(ctx, collectionID)
	if err != nil {
		a.set(collectionID, &Panel{State: Expanded, Err: err})
		return err
	}

	a.set(collectionID, &Panel{State: Expanded, Tracks: slices.Clone(tracks)})
	return nil
}

// Collapse hides the panel and drops its tracks.
func (a *Association) Collapse(collectionID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.panels, collectionID)
}

// Reset collapses every panel.
func (a *Association) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.panels = map[int]*Panel{}
}

func (a *Association) set(collectionID int, p *Panel) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.panels[collectionID] = p
}

// AddToCollectionChoices lists the collections a track can be added to.
//
// An empty list is reported as [shared.ErrNoCollections].
func (a *Association) AddToCollectionChoices(ctx context.Context) ([]models.Collection, error) {
	collections, err := a.app.Collections.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(collections) == 0 {
		err := fmt.Errorf("%w: create a collection first", shared.ErrNoCollections)
		a.app.notify(err)
		return nil, err
	}
	return collections, nil
}

// AddTrack adds a track to a collection, then refreshes counts and the open panel.
func (a *Association) AddTrack(ctx context.Context, collectionID, trackID int) error {
	if err := a.app.Client.AddCollectionTrack(ctx, collectionID, trackID); err != nil {
		return err
	}
	a.app.inform("Track added to collection")
	return a.refresh(ctx, collectionID)
}

// RemoveTrack removes a track after confirmation, then refreshes the open panel and counts.
func (a *Association) RemoveTrack(ctx context.Context, collectionID, trackID int) error {
	if err := a.app.confirm(ctx, "Remove this track from the collection?"); err != nil {
		return err
	}

	if err := a.app.Client.RemoveCollectionTrack(ctx, collectionID, trackID); err != nil {
		return err
	}
	a.app.inform("Track removed from collection")
	return a.refresh(ctx, collectionID)
}

// refresh re-opens an open panel and reloads the collection list for counts.
// The list is reloaded even when the panel fetch fails.
func (a *Association) refresh(ctx context.Context, collectionID int) error {
	var expandErr error
	if a.State(collectionID) != Collapsed {
		a.Collapse(collectionID)
		expandErr = a.Expand(ctx, collectionID)
	}
	_, listErr := a.app.Collections.List(ctx)
	return errors.Join(expandErr, listErr)
}
