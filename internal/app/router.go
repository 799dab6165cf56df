package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/musicat/internal/shared"
)

// Section is one of the mutually exclusive top-level views.
type Section string

const (
	SectionProfile     Section = "profile"
	SectionTracks      Section = "tracks"
	SectionCollections Section = "collections"
	SectionSearch      Section = "search"
	SectionAdmin       Section = "admin"
	SectionArtists     Section = "artists"
)

// Sections lists every section in navigation order.
var Sections = []Section{
	SectionProfile, SectionTracks, SectionCollections, SectionSearch, SectionAdmin, SectionArtists,
}

var sectionLabels = map[Section]string{
	SectionProfile:     "Profile",
	SectionTracks:      "My Tracks",
	SectionCollections: "Collections",
	SectionSearch:      "Search",
	SectionAdmin:       "Admin",
	SectionArtists:     "Artists",
}

// Label returns the navigation caption.
func (s Section) Label() string { return sectionLabels[s] }

// ParseSection validates a section name.
func ParseSection(name string) (Section, error) {
	s := Section(name)
	if _, ok := sectionLabels[s]; !ok {
		return "", fmt.Errorf("%w: unknown section %q", shared.ErrInvalidArgument, name)
	}
	return s, nil
}

// NavItem is one navigation control.
type NavItem struct {
	Section Section
	Label   string
	Active  bool
	Visible bool
}

// Router switches the active section and runs its loader.
type Router struct {
	app *App

	mu     sync.RWMutex
	active Section
	loads  map[Section]int
}

// Activate makes s the only active section and control, then runs its loader.
//
// Loaders always re-fetch; activating the same section twice loads twice.
func (r *Router) Activate(ctx context.Context, s Section) error {
	if _, ok := sectionLabels[s]; !ok {
		return fmt.Errorf("%w: unknown section %q", shared.ErrInvalidArgument, s)
	}

	r.mu.Lock()
	r.active = s
	if r.loads == nil {
		r.loads = map[Section]int{}
	}
	r.loads[s]++
	r.mu.Unlock()

	return r.load(ctx, s)
}

func (r *Router) load(ctx context.Context, s Section) error {
	a := r.app
	switch s {
	case SectionProfile:
		_, err := a.Profile.Load(ctx)
		return err
	case SectionTracks:
		_, err := a.Tracks.List(ctx)
		return err
	case SectionCollections:
		_, err := a.Collections.List(ctx)
		return err
	case SectionSearch:
		a.Search.Load()
		return nil
	case SectionArtists:
		_, err := a.Artists.List(ctx)
		return err
	case SectionAdmin:
		if !a.Session.IsAdmin() {
			return nil
		}
		return a.Admin.Load(ctx)
	}
	return nil
}

// Active returns the active section.
func (r *Router) Active() Section {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Loads returns how many times the loader of s has run.
func (r *Router) Loads(s Section) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loads[s]
}

// Visible reports whether the navigation control for s is shown.
//
// Only the admin control is conditional, on the session admin flag.
func (r *Router) Visible(s Section) bool {
	if s == SectionAdmin {
		return r.app.Session.IsAdmin()
	}
	return true
}

// Nav describes every navigation control.
func (r *Router) Nav() []NavItem {
	active := r.Active()
	items := make([]NavItem, 0, len(Sections))
	for _, s := range Sections {
		items = append(items, NavItem{
			Section: s,
			Label:   s.Label(),
			Active:  s == active,
			Visible: r.Visible(s),
		})
	}
	return items
}
