// package formatter provides functions to export collection data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/shared"
)

// BaseName is the default file stem for a collection export.
func BaseName(c models.Collection) string {
	return fmt.Sprintf("collection_%d", c.ID)
}

// ExportToCSV converts a CollectionExport to CSV format with columns: ID, Title, Artist, Genre, BPM, Duration, Added
func ExportToCSV(export *models.CollectionExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Genre", "BPM", "Duration", "Added"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		bpm := ""
		if track.BPM != nil {
			bpm = strconv.Itoa(*track.BPM)
		}
		added := ""
		if !track.AddedAt.IsZero() {
			added = track.AddedAt.UTC().Format("2006-01-02")
		}
		record := []string{
			strconv.Itoa(track.ID),
			track.Title,
			track.ArtistName,
			track.GenreName,
			bpm,
			strconv.Itoa(track.Duration()),
			added,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a CollectionExport to Markdown format
func ExportToMarkdown(export *models.CollectionExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Collection.Name)
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(export.Tracks))
	fmt.Fprintf(&buf, "**Favorite**: %s\n", shared.YesNo(export.Collection.IsFavorite))
	if !export.Collection.CreatedAt.IsZero() {
		fmt.Fprintf(&buf, "**Created**: %s\n", export.Collection.CreatedAt.UTC().Format("2006-01-02"))
	}
	buf.WriteString("\n## Tracks\n\n")

	if len(export.Tracks) == 0 {
		buf.WriteString("_This collection has no tracks yet._\n")
		return buf.Bytes(), nil
	}

	for i, track := range export.Tracks {
		genrePart := ""
		if track.GenreName != "" {
			genrePart = fmt.Sprintf(" (%s)", track.GenreName)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n",
			i+1, shared.OrNA(track.ArtistName), track.Title, genrePart, shared.FormatDuration(track.Duration()))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a CollectionExport to plain text format
func ExportToText(export *models.CollectionExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Collection: %s\n", export.Collection.Name)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(export.Tracks))

	for i, track := range export.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, shared.OrNA(track.ArtistName), track.Title)
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of collection metadata (without tracks)
func ToMetadataJSON(collection models.Collection) ([]byte, error) {
	return shared.MarshalJSON(collection, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a collection to CSV format with accompanying metadata JSON file.
//
// Defaults to [BaseName] as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(export *models.CollectionExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = BaseName(export.Collection)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
}

// WriteMarkdownExport exports a collection to {dir}/README.md.
//
// Directory name defaults to [BaseName].
func WriteMarkdownExport(export *models.CollectionExport, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = BaseName(export.Collection)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return &MarkdownExportResult{Directory: outputDir, Files: []string{mdFile}}, nil
}

// WriteTextExport exports a collection to plain text format.
//
// Defaults to {base}_tracks.txt as the filename.
func WriteTextExport(export *models.CollectionExport, path string) (string, error) {
	if path == "" {
		path = BaseName(export.Collection) + "_tracks.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport writes the whole export, tracks included, as indented JSON.
func WriteJSONExport(export *models.CollectionExport, path string) (string, error) {
	if path == "" {
		path = BaseName(export.Collection) + ".json"
	}

	data, err := shared.MarshalJSON(export, true)
	if err != nil {
		return "", fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("JSON write failed: %w", err)
	}
	return path, nil
}
