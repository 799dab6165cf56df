package formatter

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/shared"
	th "github.com/desertthunder/musicat/internal/testing"
)

func intPtr(v int) *int { return &v }

func testExport() *models.CollectionExport {
	return &models.CollectionExport{
		Collection: models.Collection{
			ID:          7,
			Name:        "Road Trip",
			IsFavorite:  true,
			CreatedAt:   models.Timestamp{Time: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
			TracksCount: 2,
		},
		Tracks: []models.Track{
			{
				ID:          11,
				Title:       "Song One",
				ArtistName:  "Artist One",
				GenreName:   "Rock",
				BPM:         intPtr(120),
				DurationSec: intPtr(180),
				AddedAt:     models.Timestamp{Time: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)},
			},
			{
				ID:         12,
				Title:      "Song Two",
				ArtistName: "Artist Two",
			},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Title,Artist,Genre,BPM,Duration,Added") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "11,Song One,Artist One,Rock,120,180,2024-04-02") {
			t.Errorf("CSV missing track1 row, got: %s", output)
		}
		if !strings.Contains(output, "12,Song Two,Artist Two,,,0,") {
			t.Errorf("CSV track2 should leave unknown values blank, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testExport())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# Road Trip") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "**Tracks**: 2") {
			t.Errorf("Markdown missing track count")
		}
		if !strings.Contains(output, "**Favorite**: Yes") {
			t.Errorf("Markdown missing favorite flag")
		}
		if !strings.Contains(output, "1. Artist One - Song One (Rock) [3:00]") {
			t.Errorf("Markdown missing track1, got: %s", output)
		}
		if !strings.Contains(output, "2. Artist Two - Song Two [N/A]") {
			t.Errorf("Markdown missing track2 (no genre, no duration), got: %s", output)
		}
	})

	t.Run("ExportToMarkdown empty collection", func(t *testing.T) {
		export := &models.CollectionExport{Collection: models.Collection{ID: 1, Name: "Empty"}}

		data, err := ExportToMarkdown(export)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if !strings.Contains(string(data), "no tracks yet") {
			t.Errorf("Markdown missing empty notice, got: %s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Collection: Road Trip") {
			t.Errorf("Text missing collection name")
		}
		if !strings.Contains(output, "Tracks: 2") {
			t.Errorf("Text missing track count")
		}
		if !strings.Contains(output, "1. Artist One - Song One") {
			t.Errorf("Text missing track1")
		}
		if !strings.Contains(output, "2. Artist Two - Song Two") {
			t.Errorf("Text missing track2")
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(testExport().Collection)
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		var got models.Collection
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("metadata is not valid JSON: %v", err)
		}
		if got.ID != 7 || got.Name != "Road Trip" || !got.IsFavorite {
			t.Errorf("metadata mismatch: %+v", got)
		}
		if strings.Contains(string(data), "Song One") {
			t.Errorf("metadata should not contain tracks")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "road_trip")

		res, err := WriteCSVExport(testExport(), base)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		if res.TracksFile != base+"_tracks.csv" {
			t.Errorf("unexpected tracks file: %s", res.TracksFile)
		}
		th.AssertFileExists(t, res.TracksFile)
		th.AssertFileExists(t, res.MetadataFile)
		if !strings.Contains(th.MustReadFile(t, res.MetadataFile), `"name": "Road Trip"`) {
			t.Errorf("metadata file missing name")
		}
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "md")

		res, err := WriteMarkdownExport(testExport(), dir)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		if len(res.Files) != 1 {
			t.Fatalf("expected 1 file, got %d", len(res.Files))
		}
		th.AssertFileExists(t, filepath.Join(dir, "README.md"))
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tracks.txt")

		got, err := WriteTextExport(testExport(), path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		if !strings.Contains(th.MustReadFile(t, path), "Collection: Road Trip") {
			t.Errorf("text file missing header")
		}
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export.json")

		if _, err := WriteJSONExport(testExport(), path); err != nil {
			t.Fatalf("WriteJSONExport failed: %v", err)
		}

		var got models.CollectionExport
		if err := json.Unmarshal([]byte(th.MustReadFile(t, path)), &got); err != nil {
			t.Fatalf("export is not valid JSON: %v", err)
		}
		if len(got.Tracks) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(got.Tracks))
		}
	})

	t.Run("unwritable path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "dir", "tracks.txt")
		if _, err := WriteTextExport(testExport(), path); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})

	t.Run("WriteManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export_manifest.json")
		m := Manifest{
			Format:            "csv",
			TotalCollections:  2,
			SuccessfulExports: 1,
			FailedExports:     1,
			Collections: []ManifestEntry{
				{CollectionID: 1, Name: "A", Status: "success", Files: []string{"a.csv"}},
				{CollectionID: 2, Name: "B", Status: "failed", Error: "boom"},
			},
		}

		if err := WriteManifest(m, path); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}

		content := th.MustReadFile(t, path)
		for _, want := range []string{`"format": "csv"`, `"total_collections": 2`, `"status": "failed"`, `"error": "boom"`} {
			if !strings.Contains(content, want) {
				t.Errorf("manifest missing %s", want)
			}
		}
	})
}

func TestListing(t *testing.T) {
	listing := Listing{
		Title:   "Artists",
		Headers: []string{"ID", "Name"},
		Rows:    [][]string{{"1", "Band | Friends"}, {"2", "Solo"}},
	}

	t.Run("ParseFormat", func(t *testing.T) {
		tests := map[string]Format{"": FormatTable, "CSV": FormatCSV, "markdown": FormatMarkdown, "md": FormatMarkdown, "text": FormatText}
		for in, want := range tests {
			got, err := ParseFormat(in)
			if err != nil || got != want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
			}
		}
		if _, err := ParseFormat("xml"); err == nil {
			t.Error("expected error for unknown format")
		} else if !strings.Contains(err.Error(), shared.ErrInvalidArgument.Error()) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, FormatCSV, listing); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		want := "ID,Name\n1,Band | Friends\n2,Solo\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("markdown escapes pipes", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, FormatMarkdown, listing); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "| ID | Name |\n| --- | --- |\n") {
			t.Errorf("markdown header malformed: %q", output)
		}
		if !strings.Contains(output, `| 1 | Band \| Friends |`) {
			t.Errorf("markdown row not escaped: %q", output)
		}
	})

	t.Run("text aligns columns", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, FormatText, listing); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
		}
		if !strings.HasPrefix(lines[1], "1   Band") {
			t.Errorf("unexpected alignment: %q", lines[1])
		}
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, FormatTable, listing); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		output := buf.String()
		for _, want := range []string{"Artists", "Name", "Solo"} {
			if !strings.Contains(output, want) {
				t.Errorf("table missing %q: %s", want, output)
			}
		}
	})

	t.Run("write failure", func(t *testing.T) {
		if err := Render(&th.FWriter{}, FormatMarkdown, listing); err == nil {
			t.Error("expected error from failing writer")
		}
	})
}
