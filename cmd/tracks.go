package main

import (
	"context"
	"strconv"

	"github.com/desertthunder/musicat/internal/app"
	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/shared"
	"github.com/urfave/cli/v3"
)

// TracksList prints the signed-in user's tracks.
func (r *Runner) TracksList(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	tracks, err := a.Tracks.List(ctx)
	if err != nil {
		return err
	}
	return r.writeListing(cmd, app.TracksTable(tracks), tracks)
}

// TracksAdd creates a track. Artist and genre accept a name or an ID.
func (r *Runner) TracksAdd(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	form, err := a.Tracks.NewForm(ctx)
	if err != nil {
		return err
	}
	if err := applyTrackFlags(a, cmd, &form.Fields); err != nil {
		return err
	}

	id, err := a.Tracks.Create(ctx, form.Fields)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(models.CreatedTrack{TrackID: id}, true)
	}
	return r.writePlain("Track ID: %d\n", id)
}

// TracksEdit updates a track, starting from its listed values.
func (r *Runner) TracksEdit(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	if _, err := a.Tracks.List(ctx); err != nil {
		return err
	}

	form, err := a.Tracks.EditForm(ctx, id)
	if err != nil {
		return err
	}
	if err := applyTrackFlags(a, cmd, &form.Fields); err != nil {
		return err
	}
	return a.Tracks.Save(ctx, form)
}

// TracksDelete removes a track after confirmation.
func (r *Runner) TracksDelete(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	return a.Tracks.Delete(ctx, id)
}

// applyTrackFlags overwrites the fields whose flags were set.
func applyTrackFlags(a *app.App, cmd *cli.Command, fields *models.TrackFields) error {
	if cmd.IsSet("title") {
		fields.Title = cmd.String("title")
	}
	if cmd.IsSet("artist") {
		id, err := resolveArtist(a, cmd.String("artist"))
		if err != nil {
			return err
		}
		fields.ArtistID = id
	}
	if cmd.IsSet("genre") {
		id, err := resolveGenre(a, cmd.String("genre"))
		if err != nil {
			return err
		}
		fields.GenreID = id
	}
	if cmd.IsSet("bpm") {
		bpm, err := optionalInt(cmd, "bpm", strconv.Atoi)
		if err != nil {
			return err
		}
		fields.BPM = bpm
	}
	if cmd.IsSet("duration") {
		duration, err := optionalInt(cmd, "duration", shared.ParseDuration)
		if err != nil {
			return err
		}
		fields.DurationSec = duration
	}
	return nil
}
