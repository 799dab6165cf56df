package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/musicat/internal/app"
	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/shared"
	"github.com/desertthunder/musicat/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CollectionsList prints collections with their track counts.
func (r *Runner) CollectionsList(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	collections, err := a.Collections.List(ctx)
	if err != nil {
		return err
	}
	return r.writeListing(cmd, app.CollectionsTable(collections), collections)
}

// CollectionsCreate creates a collection.
func (r *Runner) CollectionsCreate(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	return a.Collections.Create(ctx, models.CollectionFields{
		Name:       cmd.StringArg("name"),
		IsFavorite: cmd.Bool("favorite"),
	})
}

// CollectionsEdit changes the name or favorite flag, keeping whatever was not passed.
func (r *Runner) CollectionsEdit(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	if _, err := a.Collections.List(ctx); err != nil {
		return err
	}

	form, err := a.Collections.EditForm(id)
	if err != nil {
		return err
	}
	if cmd.IsSet("name") {
		form.Fields.Name = cmd.String("name")
	}
	if cmd.IsSet("favorite") {
		form.Fields.IsFavorite = cmd.Bool("favorite")
	}
	return a.Collections.Save(ctx, form)
}

// CollectionsDelete removes a collection after confirmation.
func (r *Runner) CollectionsDelete(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	return a.Collections.Delete(ctx, id)
}

// CollectionsTracks prints the track panel of one collection.
func (r *Runner) CollectionsTracks(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	if err := a.Association.Expand(ctx, id); err != nil {
		return err
	}
	panel := a.Association.Panel(id)

	table := app.PanelTable(panel)
	if c, ok := a.Collections.Find(id); ok {
		table.Title = c.Name
	}
	return r.writeListing(cmd, table, panel.Tracks)
}

// CollectionsAddTrack adds a track to a collection.
func (r *Runner) CollectionsAddTrack(ctx context.Context, cmd *cli.Command) error {
	a, collectionID, trackID, err := r.membershipArgs(ctx, cmd)
	if err != nil {
		return err
	}
	return a.Association.AddTrack(ctx, collectionID, trackID)
}

// CollectionsRemoveTrack removes a track from a collection after confirmation.
func (r *Runner) CollectionsRemoveTrack(ctx context.Context, cmd *cli.Command) error {
	a, collectionID, trackID, err := r.membershipArgs(ctx, cmd)
	if err != nil {
		return err
	}
	return a.Association.RemoveTrack(ctx, collectionID, trackID)
}

func (r *Runner) membershipArgs(ctx context.Context, cmd *cli.Command) (*app.App, int, int, error) {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return nil, 0, 0, err
	}
	collectionID, err := idArg(cmd, "collection")
	if err != nil {
		return nil, 0, 0, err
	}
	trackID, err := idArg(cmd, "track")
	if err != nil {
		return nil, 0, 0, err
	}
	return a, collectionID, trackID, nil
}

// CollectionsExport writes every (or the selected) collection to disk with a manifest.
func (r *Runner) CollectionsExport(ctx context.Context, cmd *cli.Command) error {
	a, err := r.signedIn(ctx, cmd)
	if err != nil {
		return err
	}

	format, err := tasks.ParseExportFormat(cmd.String("as"))
	if err != nil {
		return err
	}
	ids, err := parseIDs(cmd.String("ids"))
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
		}
	}()

	exporter := tasks.NewExporter(a.Client, shared.WithLogger(r.logger, "task", "export"))
	result, err := exporter.ExportCollections(ctx, progress, tasks.ExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		IDs:        ids,
	})
	close(progress)
	wg.Wait()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Manifest(format), true)
	}

	r.writePlainHeader("Export complete")
	r.writePlain("Format:     %s\n", format)
	r.writePlain("Directory:  %s\n", result.OutputDirectory)
	r.writePlain("Manifest:   %s\n", result.ManifestPath)
	r.writePlain("Exported:   %d/%d\n", result.SuccessfulExports, result.TotalCollections)
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ %s (ID %d): %v\n", res.Name, res.CollectionID, res.Error)
		}
	}
	return nil
}

func parseIDs(s string) ([]int, error) {
	var ids []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: collection id %q", shared.ErrInvalidArgument, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
