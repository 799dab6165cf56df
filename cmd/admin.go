package main

import (
	"context"

	"github.com/desertthunder/musicat/internal/app"
	"github.com/urfave/cli/v3"
)

// AdminList prints the admin listing named by the subcommand: users, tracks or audit.
//
// The session is loaded first so a non-administrator is refused without a listing request.
func (r *Runner) AdminList(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	if _, err := a.Session.Load(ctx); err != nil {
		return err
	}

	tab := app.AdminTab(cmd.Name)
	if cmd.Bool("json") {
		var raw any
		switch tab {
		case app.AdminTracks:
			raw, err = a.Admin.Tracks(ctx)
		case app.AdminAudit:
			raw, err = a.Admin.Audit(ctx)
		default:
			raw, err = a.Admin.Users(ctx)
		}
		if err != nil {
			return err
		}
		return r.writeJSON(raw, true)
	}

	if err := a.Admin.SwitchTab(ctx, tab); err != nil {
		return err
	}
	return r.writeListing(cmd, a.Admin.Table(), nil)
}
