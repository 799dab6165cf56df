// package tasks implements bulk collection exports.
//
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicat/internal/models"
)

// CollectionSource is the part of the catalog client an export reads from.
type CollectionSource interface {
	Collections(ctx context.Context) ([]models.Collection, error)
	CollectionTracks(ctx context.Context, id int) ([]models.Track, error)
}

// ExportJob is one fetched collection waiting to be written.
type ExportJob struct {
	Export *models.CollectionExport
}

// CollectionExportResult is the outcome for a single collection.
type CollectionExportResult struct {
	CollectionID int
	Name         string
	Success      bool
	Files        []string
	Error        error
}

// ExportResult summarises a bulk export.
type ExportResult struct {
	TotalCollections  int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []CollectionExportResult
}

// Exporter exports collections from a [CollectionSource].
type Exporter struct {
	source CollectionSource
	logger *log.Logger
}

// NewExporter creates an Exporter. A nil logger discards output.
func NewExporter(source CollectionSource, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Exporter{source: source, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
