package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchCollections Phase = iota
	FetchTracks
	ExportCollection
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchCollections:
		return "fetch_collections"
	case FetchTracks:
		return "fetch_tracks"
	case ExportCollection:
		return "export_collection"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchCollectionsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCollections,
		Step:    1,
		Total:   1,
		Message: "Fetching collections...",
	}
}

func fetchTracksUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching tracks: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
	}
}
