package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/musicat/internal/shared"
)

// ManifestEntry records the outcome of one collection in a bulk export.
type ManifestEntry struct {
	CollectionID int      `json:"collection_id"`
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Manifest summarises a bulk export.
type Manifest struct {
	Format            string          `json:"format"`
	ExportedAt        time.Time       `json:"exported_at"`
	TotalCollections  int             `json:"total_collections"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Collections       []ManifestEntry `json:"collections"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
