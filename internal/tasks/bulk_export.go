package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/musicat/internal/formatter"
	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/shared"
	"golang.org/x/time/rate"
)

// Export formats accepted by [Exporter.ExportCollections].
const (
	ExportJSON     = "json"
	ExportCSV      = "csv"
	ExportMarkdown = "markdown"
	ExportText     = "txt"
)

// ExportOpts contains configuration for bulk collection exports.
type ExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: musicat_export_{epoch})
	NumWorkers int     // Concurrent writers (default: 5, max 10)
	RateLimit  float64 // Track fetches per second (default: 5)
	IDs        []int   // Collections to export; empty means all
}

// ParseExportFormat normalises an export format name.
func ParseExportFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return ExportJSON, nil
	case "csv":
		return ExportCSV, nil
	case "md", "markdown":
		return ExportMarkdown, nil
	case "txt", "text":
		return ExportText, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
}

// ExportCollections exports collections concurrently with rate limiting and progress tracking.
//
// Track fetches are paced by the limiter and handed to a pool of writers.
// Partial failures are recorded per collection, and a manifest summarising
// the run is written to the output directory.
func (e *Exporter) ExportCollections(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: catalog client not initialized", shared.ErrServiceUnavailable)
	}

	format, err := ParseExportFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	opts.Format = format
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("musicat_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	sendProgress(prog, fetchCollectionsUpdate())
	collections, err := e.source.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	if len(opts.IDs) > 0 {
		collections = slices.DeleteFunc(collections, func(c models.Collection) bool {
			return !slices.Contains(opts.IDs, c.ID)
		})
	}
	if len(collections) == 0 {
		return nil, fmt.Errorf("%w: nothing to export", shared.ErrNoCollections)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(collections)
	result := &ExportResult{
		TotalCollections: total,
		OutputDirectory:  opts.OutputDir,
		Results:          make([]CollectionExportResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan ExportJob, total)
	results := make(chan CollectionExportResult, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, c := range collections {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			sendProgress(prog, fetchTracksUpdate(i+1, total, c.Name))
			tracks, err := e.source.CollectionTracks(ctx, c.ID)
			if err != nil {
				results <- CollectionExportResult{
					CollectionID: c.ID,
					Name:         c.Name,
					Error:        fmt.Errorf("failed to fetch tracks: %w", err),
				}
				continue
			}

			jobs <- ExportJob{Export: &models.CollectionExport{Collection: c, Tracks: tracks}}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, total, res.Name, len(res.Files)))
		} else {
			result.FailedExports++
			e.logger.Warn("collection export failed", "collection", res.CollectionID, "error", res.Error)
			sendProgress(prog, exportFailedUpdate(completed, total, res.Name, res.Error))
		}
	}

	slices.SortFunc(result.Results, func(a, b CollectionExportResult) int { return a.CollectionID - b.CollectionID })

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(result.Manifest(opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// exportWorker writes collections from the jobs channel until it closes.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan ExportJob,
	results chan<- CollectionExportResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportSingleCollection(job, opts)
	}
}

// exportSingleCollection writes one collection in the requested format.
func (e *Exporter) exportSingleCollection(j ExportJob, opts ExportOpts) CollectionExportResult {
	c := j.Export.Collection
	result := CollectionExportResult{
		CollectionID: c.ID,
		Name:         c.Name,
		Files:        []string{},
	}
	base := filepath.Join(opts.OutputDir, formatter.BaseName(c))

	switch opts.Format {
	case ExportCSV:
		csvRes, err := formatter.WriteCSVExport(j.Export, base)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.TracksFile, csvRes.MetadataFile}

	case ExportMarkdown:
		mdRes, err := formatter.WriteMarkdownExport(j.Export, base)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files

	case ExportText:
		path, err := formatter.WriteTextExport(j.Export, base+"_tracks.txt")
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	default:
		path, err := formatter.WriteJSONExport(j.Export, base+".json")
		if err != nil {
			result.Error = err
			return result
		}
		result.Files = []string{path}
	}

	e.logger.Debug("collection exported", "collection", c.ID, "files", len(result.Files))
	result.Success = true
	return result
}

// Manifest summarises the result in its on-disk form.
func (result *ExportResult) Manifest(format string) formatter.Manifest {
	m := formatter.Manifest{
		Format:            format,
		ExportedAt:        time.Now().UTC(),
		TotalCollections:  result.TotalCollections,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		Collections:       make([]formatter.ManifestEntry, 0, len(result.Results)),
	}
	for _, r := range result.Results {
		entry := formatter.ManifestEntry{CollectionID: r.CollectionID, Name: r.Name, Status: "success", Files: r.Files}
		if !r.Success {
			entry.Status = "failed"
			if r.Error != nil {
				entry.Error = r.Error.Error()
			}
		}
		m.Collections = append(m.Collections, entry)
	}
	return m
}
