package main

import (
	"context"

	"github.com/desertthunder/musicat/internal/app"
	"github.com/urfave/cli/v3"
)

// ProfileShow prints the signed-in profile.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	profile, err := a.Profile.Load(ctx)
	if err != nil {
		return err
	}
	return r.writeListing(cmd, app.ProfileTable(profile), profile)
}

// ProfileUpdate sends the current profile with the flags that were set applied on top.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	if _, err := a.Profile.Load(ctx); err != nil {
		return err
	}

	fields := a.Profile.Form()
	if cmd.IsSet("first-name") {
		fields.FirstName = cmd.String("first-name")
	}
	if cmd.IsSet("last-name") {
		fields.LastName = cmd.String("last-name")
	}
	if cmd.IsSet("email") {
		fields.Email = cmd.String("email")
	}
	if cmd.IsSet("avatar-url") {
		a.Profile.StageAvatar(cmd.String("avatar-url"))
		fields.AvatarURL = ""
	}

	profile, err := a.Profile.Save(ctx, fields)
	if err != nil {
		return err
	}
	return r.writeListing(cmd, app.ProfileTable(profile), profile)
}
