// package models defines the data model for the music catalog client
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayouts lists the formats the service is known to emit, RFC 1123 being the Flask default.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// Timestamp is a server time that tolerates null and several wire layouts.
//
// The zero value means unknown.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements [json.Unmarshaler].
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

// MarshalJSON implements [json.Marshaler], writing RFC 3339 or null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// Profile is the signed-in user.
type Profile struct {
	UserID    int    `json:"user_id"`
	Login     string `json:"login"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	IsAdmin   bool   `json:"is_admin"`
}

// FullName joins first and last name, empty when both are blank.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Artist is a performer owned by the current user.
type Artist struct {
	ID   int    `json:"artist_id"`
	Name string `json:"name"`
}

// Genre is read-only reference data.
type Genre struct {
	ID   int    `json:"genre_id"`
	Name string `json:"name"`
}

// Track is a catalog entry.
//
// Listings carry both ids and display names; either id may be absent on older servers.
type Track struct {
	ID          int       `json:"track_id"`
	Title       string    `json:"title"`
	ArtistID    *int      `json:"artist_id,omitempty"`
	ArtistName  string    `json:"artist_name"`
	GenreID     *int      `json:"genre_id,omitempty"`
	GenreName   string    `json:"genre_name"`
	BPM         *int      `json:"bpm,omitempty"`
	DurationSec *int      `json:"duration_sec,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
	AddedAt     Timestamp `json:"added_at"`
	UserLogin   string    `json:"user_login,omitempty"`
}

// Duration returns the duration in seconds, zero when unknown.
func (t Track) Duration() int {
	if t.DurationSec == nil {
		return 0
	}
	return *t.DurationSec
}

// Collection is a named group of tracks.
type Collection struct {
	ID          int       `json:"collection_id"`
	Name        string    `json:"name"`
	IsFavorite  bool      `json:"is_favorite"`
	CreatedAt   Timestamp `json:"created_at"`
	TracksCount int       `json:"tracks_count"`
}

// CollectionExport is a collection with its tracks, the unit written by exports.
type CollectionExport struct {
	Collection Collection `json:"collection"`
	Tracks     []Track    `json:"tracks"`
}

// AuditEntry is one row of the administrator audit log.
type AuditEntry struct {
	ID            int             `json:"log_id"`
	UserLogin     string          `json:"user_login"`
	OperationType string          `json:"operation_type"`
	TableName     string          `json:"table_name"`
	RecordID      *int            `json:"record_id,omitempty"`
	OperationTime Timestamp       `json:"operation_time"`
	Details       json.RawMessage `json:"details,omitempty"`
}

// DetailsText renders the opaque details payload compactly, empty when absent.
func (a AuditEntry) DetailsText() string {
	if len(a.Details) == 0 || bytes.Equal(a.Details, []byte("null")) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, a.Details); err != nil {
		return string(a.Details)
	}
	return buf.String()
}

// AdminUser is a user account as listed to administrators.
type AdminUser struct {
	UserID    int       `json:"user_id"`
	Login     string    `json:"login"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	IsActive  bool      `json:"is_active"`
	CreatedAt Timestamp `json:"created_at"`
}

// LoginResult is returned by a successful sign-in.
type LoginResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// Ack is the {message} body returned by mutations and errors.
type Ack struct {
	Message string `json:"message"`
}

// CreatedArtist is returned by POST /artists.
type CreatedArtist struct {
	ArtistID int `json:"artist_id"`
}

// CreatedTrack is returned by POST /tracks.
type CreatedTrack struct {
	TrackID int `json:"track_id"`
}

// CreatedCollection is returned by POST /collections.
type CreatedCollection struct {
	CollectionID int `json:"collection_id"`
}

// TracksCount is returned by GET /artists/{id}/tracks-count.
type TracksCount struct {
	TracksCount int `json:"tracks_count"`
}

// Health is returned by GET /health.
type Health struct {
	Status    string    `json:"status"`
	Timestamp Timestamp `json:"timestamp"`
}
