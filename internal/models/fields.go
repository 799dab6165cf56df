package models

import (
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ArtistFields is the body of artist create and update requests.
type ArtistFields struct {
	Name string `json:"name"`
}

// Validate implements [validation.Validatable].
func (f ArtistFields) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required.Error("artist name is required")),
	)
}

// TrackFields is the body of track create and update requests.
//
// BPM and DurationSec are sent as null when unset.
type TrackFields struct {
	Title       string `json:"title"`
	ArtistID    int    `json:"artist_id"`
	GenreID     int    `json:"genre_id"`
	BPM         *int   `json:"bpm"`
	DurationSec *int   `json:"duration_sec"`
}

// Validate implements [validation.Validatable].
func (f TrackFields) Validate() error {
	f.Title = strings.TrimSpace(f.Title)
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required.Error("track title is required")),
		validation.Field(&f.ArtistID, validation.Required.Error("artist is required")),
		validation.Field(&f.GenreID, validation.Required.Error("genre is required")),
	)
}

// CollectionFields is the body of collection create and update requests.
type CollectionFields struct {
	Name       string `json:"name"`
	IsFavorite bool   `json:"is_favorite"`
}

// Validate implements [validation.Validatable].
func (f CollectionFields) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required.Error("collection name is required")),
	)
}

// ProfileFields is the body of a profile update.
type ProfileFields struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// Validate implements [validation.Validatable].
func (f ProfileFields) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email, validation.Required.Error("email is required")),
	)
}

// Credentials is the body of a sign-in request.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Validate implements [validation.Validatable].
func (c Credentials) Validate() error {
	c.Login = strings.TrimSpace(c.Login)
	return validation.ValidateStruct(&c,
		validation.Field(&c.Login, validation.Required.Error("login is required")),
		validation.Field(&c.Password, validation.Required.Error("password is required")),
	)
}

// Registration is the body of a sign-up request.
type Registration struct {
	Login     string `json:"login"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Validate implements [validation.Validatable].
func (r Registration) Validate() error {
	r.Login = strings.TrimSpace(r.Login)
	r.Email = strings.TrimSpace(r.Email)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required.Error("login is required")),
		validation.Field(&r.Password, validation.Required.Error("password is required")),
		validation.Field(&r.Email, validation.Required.Error("email is required")),
	)
}

// AddTrackFields is the body of POST /collections/{id}/tracks.
type AddTrackFields struct {
	TrackID int `json:"track_id"`
}

// SearchFilters are the optional track search parameters.
//
// Zero values are treated as unset and never sent.
type SearchFilters struct {
	Title       string
	Artist      string
	GenreID     int
	BPM         int
	DurationSec int
}

// IsEmpty reports whether no filter is set.
func (f SearchFilters) IsEmpty() bool {
	return len(f.Query()) == 0
}

// Query encodes the set filters as URL parameters.
func (f SearchFilters) Query() url.Values {
	q := url.Values{}
	if s := strings.TrimSpace(f.Title); s != "" {
		q.Set("title", s)
	}
	if s := strings.TrimSpace(f.Artist); s != "" {
		q.Set("artist", s)
	}
	if f.GenreID > 0 {
		q.Set("genre_id", strconv.Itoa(f.GenreID))
	}
	if f.BPM > 0 {
		q.Set("bpm", strconv.Itoa(f.BPM))
	}
	if f.DurationSec > 0 {
		q.Set("duration", strconv.Itoa(f.DurationSec))
	}
	return q
}
