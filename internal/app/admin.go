package app

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/shared"
)

// AdminTab is one view of the admin section.
type AdminTab string

const (
	AdminUsers  AdminTab = "users"
	AdminTracks AdminTab = "tracks"
	AdminAudit  AdminTab = "audit"
)

// AdminTabs lists the tabs in display order.
var AdminTabs = []AdminTab{AdminUsers, AdminTracks, AdminAudit}

// AdminController loads the administrator listings. Every call is gated on the session admin flag.
type AdminController struct {
	app *App

	mu     sync.RWMutex
	tab    AdminTab
	users  []models.AdminUser
	tracks []models.Track
	audit  []models.AuditEntry
}

// Load opens the users tab, as activating the section does.
func (c *AdminController) Load(ctx context.Context) error {
	return c.SwitchTab(ctx, AdminUsers)
}

// Tab returns the active tab.
func (c *AdminController) Tab() AdminTab {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tab
}

// SwitchTab activates tab and loads its data.
func (c *AdminController) SwitchTab(ctx context.Context, tab AdminTab) error {
	if !slices.Contains(AdminTabs, tab) {
		return fmt.Errorf("%w: unknown admin tab %q", shared.ErrInvalidArgument, tab)
	}

	c.mu.Lock()
	c.tab = tab
	c.mu.Unlock()

	var err error
	switch tab {
	case AdminUsers:
		_, err = c.Users(ctx)
	case AdminTracks:
		_, err = c.Tracks(ctx)
	case AdminAudit:
		_, err = c.Audit(ctx)
	}
	return err
}

func (c *AdminController) gate() error {
	if !c.app.Session.IsAdmin() {
		return shared.ErrForbidden
	}
	return nil
}

// Users fetches every account.
func (c *AdminController) Users(ctx context.Context) ([]models.AdminUser, error) {
	if err := c.gate(); err != nil {
		return nil, err
	}
	users, err := c.app.Client.AdminUsers(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.users = slices.Clone(users)
	c.mu.Unlock()
	return users, nil
}

// Tracks fetches every track with its owner.
func (c *AdminController) Tracks(ctx context.Context) ([]models.Track, error) {
	if err := c.gate(); err != nil {
		return nil, err
	}
	tracks, err := c.app.Client.AdminTracks(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.tracks = slices.Clone(tracks)
	c.mu.Unlock()
	return tracks, nil
}

// Audit fetches the audit log.
func (c *AdminController) Audit(ctx context.Context) ([]models.AuditEntry, error) {
	if err := c.gate(); err != nil {
		return nil, err
	}
	entries, err := c.app.Client.AdminAudit(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.audit = slices.Clone(entries)
	c.mu.Unlock()
	return entries, nil
}

// Table renders the active tab.
func (c *AdminController) Table() Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch c.tab {
	case AdminTracks:
		return AdminTracksTable(c.tracks)
	case AdminAudit:
		return AuditTable(c.audit)
	default:
		return AdminUsersTable(c.users)
	}
}
