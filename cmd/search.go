package main

import (
	"context"
	"strconv"

	"github.com/desertthunder/musicat/internal/app"
	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search runs a filtered track search. Unset filters are not sent.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}

	filters := models.SearchFilters{
		Title:  cmd.String("title"),
		Artist: cmd.String("artist"),
	}
	if genre := cmd.String("genre"); genre != "" {
		if err := a.RefData.ReloadGenres(ctx); err != nil {
			return err
		}
		if filters.GenreID, err = resolveGenre(a, genre); err != nil {
			return err
		}
	}
	if bpm, err := optionalInt(cmd, "bpm", strconv.Atoi); err != nil {
		return err
	} else if bpm != nil {
		filters.BPM = *bpm
	}
	if duration, err := optionalInt(cmd, "duration", shared.ParseDuration); err != nil {
		return err
	} else if duration != nil {
		filters.DurationSec = *duration
	}

	r.logger.Debug("searching tracks", "query", filters.Query().Encode())
	tracks, err := a.Search.Search(ctx, filters)
	if err != nil {
		return err
	}
	return r.writeListing(cmd, app.SearchTable(tracks, true), tracks)
}
