package app

import (
	"context"
	"sync"

	"github.com/desertthunder/musicat/internal/models"
)

// ProfileController edits the signed-in profile.
type ProfileController struct {
	app *App

	mu           sync.RWMutex
	stagedAvatar string
}

// Load refreshes the session profile.
func (c *ProfileController) Load(ctx context.Context) (*models.Profile, error) {
	return c.app.Session.Load(ctx)
}

// StageAvatar previews a new avatar URL. Nothing is sent until [ProfileController.Save].
func (c *ProfileController) StageAvatar(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stagedAvatar = url
}

// AvatarURL is the staged avatar, or the saved one when nothing is staged.
func (c *ProfileController) AvatarURL() string {
	c.mu.RLock()
	staged := c.stagedAvatar
	c.mu.RUnlock()
	if staged != "" {
		return staged
	}
	if p := c.app.Session.Current(); p != nil {
		return p.AvatarURL
	}
	return ""
}

// Form returns the editable fields of the current profile.
func (c *ProfileController) Form() models.ProfileFields {
	p := c.app.Session.Current()
	if p == nil {
		return models.ProfileFields{}
	}
	return models.ProfileFields{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		AvatarURL: c.AvatarURL(),
	}
}

// Save sends the profile and reloads it from the server.
//
// An empty avatar URL keeps the staged or current one.
func (c *ProfileController) Save(ctx context.Context, fields models.ProfileFields) (*models.Profile, error) {
	if fields.AvatarURL == "" {
		fields.AvatarURL = c.AvatarURL()
	}
	if err := fields.Validate(); err != nil {
		return nil, c.app.invalid(err)
	}

	if err := c.app.Client.UpdateProfile(ctx, fields); err != nil {
		return nil, err
	}

	p, err := c.app.Session.Load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.stagedAvatar = ""
	c.mu.Unlock()
	c.app.inform("Profile saved")
	return p, nil
}
