package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicat/internal/services"
	"github.com/desertthunder/musicat/internal/shared"
	"golang.org/x/text/language"
)

// Store is the persisted client state used by the app.
type Store interface {
	services.TokenStore
	SetToken(ctx context.Context, token string) error
}

// Informer is implemented by notifiers that also show success messages.
type Informer interface {
	Inform(msg string)
}

// Confirmer asks the user to approve a mutation before it is sent.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to [Confirmer].
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm implements [Confirmer].
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// AlwaysConfirm approves every prompt.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Options configures an [App].
type Options struct {
	Locale    string
	Logger    *log.Logger
	Notifier  services.Notifier
	Confirmer Confirmer
}

// App wires the session, caches and controllers around one transport client.
type App struct {
	Client  *services.Client
	Store   Store
	Session *Session
	RefData *RefData
	Router  *Router
	Modal   *Modal

	Auth        *AuthController
	Profile     *ProfileController
	Artists     *ArtistController
	Tracks      *TrackController
	Collections *CollectionController
	Association *Association
	Search      *SearchController
	Admin       *AdminController

	locale language.Tag
	logger *log.Logger

	mu        sync.RWMutex
	notifier  services.Notifier
	confirmer Confirmer
	signedOut func()
}

// New builds an App around client and store.
func New(client *services.Client, store Store, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	confirmer := opts.Confirmer
	if confirmer == nil {
		confirmer = AlwaysConfirm
	}

	a := &App{
		Client:    client,
		Store:     store,
		Session:   NewSession(client),
		RefData:   NewRefData(client),
		Modal:     &Modal{},
		locale:    ParseLocale(opts.Locale),
		logger:    logger,
		notifier:  opts.Notifier,
		confirmer: confirmer,
	}
	a.Auth = &AuthController{app: a}
	a.Profile = &ProfileController{app: a}
	a.Artists = &ArtistController{app: a}
	a.Tracks = &TrackController{app: a}
	a.Collections = &CollectionController{app: a}
	a.Association = &Association{app: a, panels: map[int]*Panel{}}
	a.Search = &SearchController{app: a}
	a.Admin = &AdminController{app: a, tab: AdminUsers}
	a.Router = &Router{app: a, active: SectionProfile}

	client.SetNotifier(a.notifier)
	client.OnUnauthorized(a.resetSession)
	return a
}

// ParseLocale maps a config locale onto a supported language, defaulting to English.
func ParseLocale(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	if base, _ := tag.Base(); base.String() == "ru" {
		return language.Russian
	}
	return language.English
}

// Locale returns the language used for pluralised prompts.
func (a *App) Locale() language.Tag { return a.locale }

// SetNotifier replaces the user-visible failure sink for the app and its transport.
func (a *App) SetNotifier(n services.Notifier) {
	a.mu.Lock()
	a.notifier = n
	a.mu.Unlock()
	a.Client.SetNotifier(n)
}

// SetConfirmer replaces the confirmation prompt.
func (a *App) SetConfirmer(c Confirmer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.confirmer = c
}

// OnSignedOut registers fn to run whenever the session is lost, either by
// logout or by an authentication failure.
func (a *App) OnSignedOut(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signedOut = fn
}

// Start restores the session and fills the reference cache.
//
// Without a stored token no request is made. Genres and artists are fetched
// concurrently and both complete before Start returns.
func (a *App) Start(ctx context.Context) error {
	token, err := a.Store.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stored token: %w", err)
	}
	if token == "" {
		return shared.ErrNotAuthenticated
	}

	if _, err := a.Session.Load(ctx); err != nil {
		return err
	}
	return a.RefData.Reload(ctx)
}

// resetSession drops every in-memory trace of the signed-in user.
func (a *App) resetSession() {
	a.Session.Clear()
	a.RefData.Clear()
	a.Association.Reset()
	a.Modal.Close()

	a.mu.RLock()
	fn := a.signedOut
	a.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// notify reports a locally detected failure.
func (a *App) notify(err error) {
	a.logger.Warn("action failed", "error", err)
	a.mu.RLock()
	n := a.notifier
	a.mu.RUnlock()
	if n != nil {
		n.Notify(err)
	}
}

// inform reports a success message when the notifier supports it.
func (a *App) inform(msg string) {
	a.logger.Debug(msg)
	a.mu.RLock()
	n := a.notifier
	a.mu.RUnlock()
	if in, ok := n.(Informer); ok {
		in.Inform(msg)
	}
}

// confirm asks for approval; a declined prompt yields [shared.ErrCancelled].
func (a *App) confirm(ctx context.Context, prompt string) error {
	a.mu.RLock()
	c := a.confirmer
	a.mu.RUnlock()

	ok, err := c.Confirm(ctx, prompt)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrCancelled
	}
	return nil
}

// invalid wraps a local validation failure and notifies it. No request follows.
func (a *App) invalid(err error) error {
	err = fmt.Errorf("%w: %v", shared.ErrValidation, err)
	a.notify(err)
	return err
}

// notFound reports an entity missing from the last fetched list.
func (a *App) notFound(kind string, id int) error {
	err := fmt.Errorf("%w: %s %d", shared.ErrNotFound, kind, id)
	a.notify(err)
	return err
}
