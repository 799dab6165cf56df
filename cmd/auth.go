package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/shared"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in and persists the bearer token. Missing credentials are prompted for.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	a, err := r.connect(cmd)
	if err != nil {
		return err
	}

	login, err := r.flagOrPrompt(cmd, "login", "Login")
	if err != nil {
		return err
	}
	password, err := r.flagOrPrompt(cmd, "password", "Password")
	if err != nil {
		return err
	}

	r.logger.Debug("signing in", "login", login)
	profile, err := a.Auth.Login(ctx, models.Credentials{Login: login, Password: password})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, true)
	}
	return nil
}

// AuthRegister creates an account. Sign-in is a separate step.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	a, err := r.connect(cmd)
	if err != nil {
		return err
	}

	reg := models.Registration{
		FirstName: cmd.String("first-name"),
		LastName:  cmd.String("last-name"),
	}
	if reg.Login, err = r.flagOrPrompt(cmd, "login", "Login"); err != nil {
		return err
	}
	if reg.Password, err = r.flagOrPrompt(cmd, "password", "Password"); err != nil {
		return err
	}
	if reg.Email, err = r.flagOrPrompt(cmd, "email", "Email"); err != nil {
		return err
	}

	return a.Auth.Register(ctx, reg)
}

// AuthLogout wipes the persisted client state.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	a, err := r.connect(cmd)
	if err != nil {
		return err
	}
	if err := a.Auth.Logout(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

type authStatusOutput struct {
	SignedIn  bool       `json:"signed_in"`
	Subject   string     `json:"subject,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
	Service   string     `json:"service"`
}

// AuthStatus reports the stored token's claims and checks the service health endpoint.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	a, err := r.connect(cmd)
	if err != nil {
		return err
	}

	status, err := a.Auth.Status(ctx)
	if err != nil {
		return err
	}

	out := authStatusOutput{SignedIn: status.SignedIn, Expired: status.Expired, Service: "ok"}
	if c := status.Claims; c != nil {
		out.Subject = c.Subject
		if !c.IssuedAt.IsZero() {
			out.IssuedAt = &c.IssuedAt
		}
		if !c.ExpiresAt.IsZero() {
			out.ExpiresAt = &c.ExpiresAt
		}
	}

	if health, err := a.Client.Health(ctx); err != nil {
		r.logger.Warn("health check failed", "error", err)
		out.Service = fmt.Sprintf("unavailable (%v)", err)
	} else if health.Status != "" {
		out.Service = health.Status
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, true)
	}

	r.writePlainHeader("Session")
	if !out.SignedIn {
		r.writePlain("Signed in: %s\n", shared.YesNo(false))
		r.writePlain("Service:   %s\n", out.Service)
		return r.writePlain("\nRun `musicat auth login` to sign in.\n")
	}

	r.writePlain("Signed in: %s\n", shared.YesNo(true))
	r.writePlain("Subject:   %s\n", shared.OrNA(out.Subject))
	if out.IssuedAt != nil {
		r.writePlain("Issued:    %s (%s)\n", shared.FormatDateTime(*out.IssuedAt), humanize.Time(*out.IssuedAt))
	}
	if out.ExpiresAt != nil {
		r.writePlain("Expires:   %s (%s)\n", shared.FormatDateTime(*out.ExpiresAt), humanize.Time(*out.ExpiresAt))
	}
	if out.Expired {
		r.writePlain("Token has expired; run `musicat auth login` again.\n")
	}
	return r.writePlain("Service:   %s\n", out.Service)
}
