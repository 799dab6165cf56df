// Package app holds the client-side state and the flows that keep it in sync
// with the catalog service.
//
// # State
//
// An [App] owns one [Session] (the signed-in profile), one [RefData] cache
// (genres and artists used for selections) and the last fetched list of each
// entity kind. Every piece of shared state sits behind its own RWMutex and
// follows last-write-wins.
//
// # Flows
//
// Controllers ([ArtistController], [TrackController], [CollectionController],
// [SearchController], [ProfileController], [AdminController],
// [AuthController]) validate input, issue requests through the transport and
// reload their own list after every successful mutation. Updates and deletes
// are gated by a [Confirmer]; a declined prompt returns [shared.ErrCancelled]
// and issues no request.
//
// [Router] switches between sections and always re-runs the section loader.
// [Modal] hosts one form at a time and rejects submissions from a form that
// has since been replaced. [Association] tracks the expand and collapse state
// of collection panels.
//
// # Rendering
//
// view.go turns state into [Table] values. Renderers (CLI tables, the TUI)
// only ever draw a [Table]; they never reach into controller state.
package app
