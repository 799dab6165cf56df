package app

import (
	"context"
	"time"

	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/shared"
)

// AuthStatus describes the stored credentials.
type AuthStatus struct {
	SignedIn bool
	Claims   *shared.TokenClaims
	Expired  bool
}

// AuthController signs users in and out.
type AuthController struct {
	app *App
}

// Login exchanges credentials for a token, persists it and loads the session.
func (c *AuthController) Login(ctx context.Context, creds models.Credentials) (*models.Profile, error) {
	if err := creds.Validate(); err != nil {
		return nil, c.app.invalid(err)
	}

	result, err := c.app.Client.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := c.app.Store.SetToken(ctx, result.Token); err != nil {
		return nil, err
	}

	c.app.Session.Set(result.User)
	c.app.inform("Signed in as " + c.app.Session.DisplayName())
	return c.app.Session.Current(), nil
}

// Register creates an account. The user signs in afterwards.
func (c *AuthController) Register(ctx context.Context, reg models.Registration) error {
	if err := reg.Validate(); err != nil {
		return c.app.invalid(err)
	}
	if err := c.app.Client.Register(ctx, reg); err != nil {
		return err
	}
	c.app.inform("Registration complete, sign in to continue")
	return nil
}

// Logout wipes all persisted client state and the in-memory session.
func (c *AuthController) Logout(ctx context.Context) error {
	if err := c.app.Store.Clear(ctx); err != nil {
		return err
	}
	c.app.resetSession()
	return nil
}

// Status reads the stored token without contacting the server.
func (c *AuthController) Status(ctx context.Context) (AuthStatus, error) {
	token, err := c.app.Store.Token(ctx)
	if err != nil {
		return AuthStatus{}, err
	}
	if token == "" {
		return AuthStatus{}, nil
	}

	status := AuthStatus{SignedIn: true}
	if claims, err := shared.ReadTokenClaims(token); err == nil {
		status.Claims = &claims
		status.Expired = claims.Expired(time.Now())
	}
	return status, nil
}
