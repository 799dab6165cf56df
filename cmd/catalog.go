package main

import (
	"context"

	"github.com/desertthunder/musicat/internal/app"
	"github.com/desertthunder/musicat/internal/models"
	"github.com/urfave/cli/v3"
)

// GenresList prints the reference genres.
func (r *Runner) GenresList(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	if err := a.RefData.ReloadGenres(ctx); err != nil {
		return err
	}
	genres := a.RefData.Genres()
	return r.writeListing(cmd, app.GenresTable(genres), genres)
}

// ArtistsList prints every artist.
func (r *Runner) ArtistsList(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	artists, err := a.Artists.List(ctx)
	if err != nil {
		return err
	}
	return r.writeListing(cmd, app.ArtistsTable(artists), artists)
}

// ArtistsAdd creates an artist.
func (r *Runner) ArtistsAdd(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	id, err := a.Artists.Create(ctx, models.ArtistFields{Name: cmd.StringArg("name")})
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(models.CreatedArtist{ArtistID: id}, true)
	}
	return r.writePlain("Artist ID: %d\n", id)
}

// ArtistsEdit renames an artist after confirmation.
func (r *Runner) ArtistsEdit(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	return a.Artists.Update(ctx, id, models.ArtistFields{Name: cmd.StringArg("name")})
}

// ArtistsDelete removes an artist and its tracks after a confirmation that names the track count.
func (r *Runner) ArtistsDelete(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	return a.Artists.Delete(ctx, id)
}
