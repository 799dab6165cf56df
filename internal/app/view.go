package app

import (
	"strconv"

	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/shared"
)

const (
	NoTracksText        = "No tracks"
	NoArtistsText       = "No artists"
	NoGenresText        = "No genres"
	NoCollectionsText   = "No collections. Create your first collection!"
	EmptyCollectionText = "This collection has no tracks yet. Add tracks from My Tracks."
	NothingFoundText    = "Nothing found"
	NoUsersText         = "No users"
	NoAuditText         = "No audit entries"
	PanelLoadingText    = "Loading..."
)

// Table is a rendered list. IDs holds the entity id of each row, in row order.
type Table struct {
	Title       string
	Headers     []string
	Rows        [][]string
	IDs         []int
	Placeholder string
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Lines returns the rows to display.
//
// An empty table yields a single row carrying the placeholder, or nothing
// when there is no placeholder.
func (t Table) Lines() [][]string {
	if !t.Empty() {
		return t.Rows
	}
	if t.Placeholder == "" {
		return nil
	}
	row := make([]string, max(len(t.Headers), 1))
	row[0] = t.Placeholder
	return [][]string{row}
}

func id(v int) string { return strconv.Itoa(v) }

// TracksTable renders the user's own tracks.
func TracksTable(tracks []models.Track) Table {
	t := Table{
		Title:       "My Tracks",
		Headers:     []string{"ID", "Title", "Artist", "Genre", "BPM", "Duration", "Created"},
		Placeholder: NoTracksText,
	}
	for _, tr := range tracks {
		t.IDs = append(t.IDs, tr.ID)
		t.Rows = append(t.Rows, []string{
			id(tr.ID),
			tr.Title,
			shared.OrNA(tr.ArtistName),
			shared.OrNA(tr.GenreName),
			shared.FormatOptionalInt(tr.BPM),
			shared.FormatDuration(tr.Duration()),
			shared.FormatDate(tr.CreatedAt.Time),
		})
	}
	return t
}

// ArtistsTable renders the artist list.
func ArtistsTable(artists []models.Artist) Table {
	t := Table{Title: "Artists", Headers: []string{"ID", "Name"}, Placeholder: NoArtistsText}
	for _, a := range artists {
		t.IDs = append(t.IDs, a.ID)
		t.Rows = append(t.Rows, []string{id(a.ID), a.Name})
	}
	return t
}

// GenresTable renders the reference genres.
func GenresTable(genres []models.Genre) Table {
	t := Table{Title: "Genres", Headers: []string{"ID", "Name"}, Placeholder: NoGenresText}
	for _, g := range genres {
		t.IDs = append(t.IDs, g.ID)
		t.Rows = append(t.Rows, []string{id(g.ID), g.Name})
	}
	return t
}

// CollectionsTable renders the collection list with track counts.
func CollectionsTable(collections []models.Collection) Table {
	t := Table{
		Title:       "Collections",
		Headers:     []string{"ID", "Name", "Favorite", "Tracks", "Created"},
		Placeholder: NoCollectionsText,
	}
	for _, c := range collections {
		fav := ""
		if c.IsFavorite {
			fav = "★"
		}
		t.IDs = append(t.IDs, c.ID)
		t.Rows = append(t.Rows, []string{
			id(c.ID), c.Name, fav, strconv.Itoa(c.TracksCount), shared.FormatDate(c.CreatedAt.Time),
		})
	}
	return t
}

// PanelTable renders an expanded collection panel.
func PanelTable(p Panel) Table {
	t := Table{Headers: []string{"ID", "Title", "Artist", "Duration", "Added"}}
	switch {
	case p.State == Loading:
		t.Placeholder = PanelLoadingText
		return t
	case p.Err != nil:
		t.Placeholder = "Error: " + p.Err.Error()
		return t
	}

	t.Placeholder = EmptyCollectionText
	for _, tr := range p.Tracks {
		t.IDs = append(t.IDs, tr.ID)
		t.Rows = append(t.Rows, []string{
			id(tr.ID),
			tr.Title,
			shared.OrNA(tr.ArtistName),
			shared.FormatDuration(tr.Duration()),
			shared.FormatDate(tr.AddedAt.Time),
		})
	}
	return t
}

// SearchTable renders search results. The placeholder appears only after a search.
func SearchTable(tracks []models.Track, searched bool) Table {
	t := Table{
		Title:   "Search",
		Headers: []string{"ID", "Title", "Artist", "Genre", "BPM", "Duration"},
	}
	if searched {
		t.Placeholder = NothingFoundText
	}
	for _, tr := range tracks {
		t.IDs = append(t.IDs, tr.ID)
		t.Rows = append(t.Rows, []string{
			id(tr.ID),
			tr.Title,
			shared.OrNA(tr.ArtistName),
			shared.OrNA(tr.GenreName),
			shared.FormatOptionalInt(tr.BPM),
			shared.FormatDuration(tr.Duration()),
		})
	}
	return t
}

// AdminUsersTable renders every account.
func AdminUsersTable(users []models.AdminUser) Table {
	t := Table{
		Title:       "Users",
		Headers:     []string{"ID", "Login", "Name", "Email", "Admin", "Active", "Created"},
		Placeholder: NoUsersText,
	}
	for _, u := range users {
		name := models.Profile{FirstName: u.FirstName, LastName: u.LastName}.FullName()
		t.IDs = append(t.IDs, u.UserID)
		t.Rows = append(t.Rows, []string{
			id(u.UserID),
			u.Login,
			shared.OrNA(name),
			shared.OrNA(u.Email),
			shared.YesNo(u.IsAdmin),
			shared.YesNo(u.IsActive),
			shared.FormatDate(u.CreatedAt.Time),
		})
	}
	return t
}

// AdminTracksTable renders every track with its owner.
func AdminTracksTable(tracks []models.Track) Table {
	t := Table{
		Title:       "All Tracks",
		Headers:     []string{"ID", "Title", "Artist", "Genre", "Owner", "Duration", "Created"},
		Placeholder: NoTracksText,
	}
	for _, tr := range tracks {
		t.IDs = append(t.IDs, tr.ID)
		t.Rows = append(t.Rows, []string{
			id(tr.ID),
			tr.Title,
			shared.OrNA(tr.ArtistName),
			shared.OrNA(tr.GenreName),
			shared.OrNA(tr.UserLogin),
			shared.FormatDuration(tr.Duration()),
			shared.FormatDate(tr.CreatedAt.Time),
		})
	}
	return t
}

// AuditTable renders the audit log.
func AuditTable(entries []models.AuditEntry) Table {
	t := Table{
		Title:       "Audit",
		Headers:     []string{"ID", "User", "Operation", "Table", "Record", "Time", "Details"},
		Placeholder: NoAuditText,
	}
	for _, e := range entries {
		t.IDs = append(t.IDs, e.ID)
		t.Rows = append(t.Rows, []string{
			id(e.ID),
			shared.OrNA(e.UserLogin),
			e.OperationType,
			e.TableName,
			shared.FormatOptionalInt(e.RecordID),
			shared.FormatDateTime(e.OperationTime.Time),
			shared.OrNA(e.DetailsText()),
		})
	}
	return t
}

// ProfileTable renders the profile as field/value rows.
func ProfileTable(p *models.Profile) Table {
	t := Table{Title: "Profile", Headers: []string{"Field", "Value"}, Placeholder: "Not signed in"}
	if p == nil {
		return t
	}
	role := "User"
	if p.IsAdmin {
		role = "Administrator"
	}
	t.Rows = [][]string{
		{"Login", p.Login},
		{"Name", shared.OrNA(p.FullName())},
		{"Email", shared.OrNA(p.Email)},
		{"Avatar", shared.OrNA(p.AvatarURL)},
		{"Role", role},
	}
	return t
}
