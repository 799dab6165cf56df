package app

import (
	"context"
	"sync"

	"github.com/desertthunder/musicat/internal/shared"
)

// Form is the content hosted by the [Modal].
type Form interface {
	Submit(ctx context.Context) error
}

// FormFunc adapts a submit function to [Form].
type FormFunc func(ctx context.Context) error

// Submit implements [Form].
func (f FormFunc) Submit(ctx context.Context) error { return f(ctx) }

// Ticket identifies one opening of the modal.
type Ticket uint64

// Modal is the single overlay. Opening replaces the previous content wholesale.
type Modal struct {
	mu    sync.Mutex
	open  bool
	title string
	form  Form
	gen   Ticket
}

// Open shows form under title and returns the ticket its submissions must carry.
func (m *Modal) Open(title string, form Form) Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.open = true
	m.title = title
	m.form = form
	return m.gen
}

// Submit runs the current form.
//
// A ticket from an earlier opening, or a closed modal, yields
// [shared.ErrStaleSubmit] without running anything. The modal closes after a
// successful submission unless it was reopened meanwhile.
func (m *Modal) Submit(ctx context.Context, t Ticket) error {
	m.mu.Lock()
	if !m.open || t != m.gen {
		m.mu.Unlock()
		return shared.ErrStaleSubmit
	}
	form := m.form
	m.mu.Unlock()

	if err := form.Submit(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen == t {
		m.open = false
		m.form = nil
	}
	return nil
}

// Close hides the overlay and drops its form.
func (m *Modal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	m.form = nil
}

// IsOpen reports whether the overlay is shown.
func (m *Modal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Title returns the title of the open form.
func (m *Modal) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return ""
	}
	return m.title
}

// Form returns the hosted form, nil when closed.
func (m *Modal) Form() Form {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

// SubmitGuard blocks a second submission while one is in flight.
type SubmitGuard struct {
	mu       sync.Mutex
	inFlight bool
}

// Begin marks a submission in flight, or fails with [shared.ErrSubmitInFlight].
func (g *SubmitGuard) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight {
		return shared.ErrSubmitInFlight
	}
	g.inFlight = true
	return nil
}

// End releases the guard.
func (g *SubmitGuard) End() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight = false
}

// InFlight reports whether a submission is running.
func (g *SubmitGuard) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// Label is the submit control caption for a create or edit form.
func (g *SubmitGuard) Label(editing bool) string {
	switch {
	case g.InFlight():
		return "Saving..."
	case editing:
		return "Save"
	default:
		return "Create"
	}
}
