package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/musicat/internal/models"
)

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	var result models.LoginResult
	if err := c.DoPublic(ctx, http.MethodPost, "/auth/login", creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates an account. The caller signs in separately.
func (c *Client) Register(ctx context.Context, reg models.Registration) error {
	return c.DoPublic(ctx, http.MethodPost, "/auth/register", reg, nil)
}

// Health reports service liveness.
func (c *Client) Health(ctx context.Context) (*models.Health, error) {
	var h models.Health
	if err := c.DoPublic(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Profile retrieves the signed-in user.
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.Do(ctx, http.MethodGet, "/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile replaces the editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, fields models.ProfileFields) error {
	return c.Do(ctx, http.MethodPut, "/profile", fields, nil)
}

// Genres lists every genre.
func (c *Client) Genres(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	if err := c.Do(ctx, http.MethodGet, "/genres", nil, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

// Artists lists the user's artists.
func (c *Client) Artists(ctx context.Context) ([]models.Artist, error) {
	var artists []models.Artist
	if err := c.Do(ctx, http.MethodGet, "/artists", nil, &artists); err != nil {
		return nil, err
	}
	return artists, nil
}

// CreateArtist adds an artist and returns its server-assigned id.
func (c *Client) CreateArtist(ctx context.Context, fields models.ArtistFields) (int, error) {
	var created models.CreatedArtist
	if err := c.Do(ctx, http.MethodPost, "/artists", fields, &created); err != nil {
		return 0, err
	}
	return created.ArtistID, nil
}

// UpdateArtist renames an artist.
func (c *Client) UpdateArtist(ctx context.Context, id int, fields models.ArtistFields) error {
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("/artists/%d", id), fields, nil)
}

// DeleteArtist removes an artist along with its tracks.
func (c *Client) DeleteArtist(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/artists/%d", id), nil, nil)
}

// ArtistTracksCount returns how many tracks depend on an artist.
func (c *Client) ArtistTracksCount(ctx context.Context, id int) (int, error) {
	var count models.TracksCount
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/artists/%d/tracks-count", id), nil, &count); err != nil {
		return 0, err
	}
	return count.TracksCount, nil
}

// Tracks lists the user's tracks.
func (c *Client) Tracks(ctx context.Context) ([]models.Track, error) {
	var tracks []models.Track
	if err := c.Do(ctx, http.MethodGet, "/tracks", nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// CreateTrack adds a track and returns its server-assigned id.
func (c *Client) CreateTrack(ctx context.Context, fields models.TrackFields) (int, error) {
	var created models.CreatedTrack
	if err := c.Do(ctx, http.MethodPost, "/tracks", fields, &created); err != nil {
		return 0, err
	}
	return created.TrackID, nil
}

// UpdateTrack replaces a track's fields.
func (c *Client) UpdateTrack(ctx context.Context, id int, fields models.TrackFields) error {
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("/tracks/%d", id), fields, nil)
}

// DeleteTrack removes a track.
func (c *Client) DeleteTrack(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/tracks/%d", id), nil, nil)
}

// Collections lists the user's collections with track counts.
func (c *Client) Collections(ctx context.Context) ([]models.Collection, error) {
	var collections []models.Collection
	if err := c.Do(ctx, http.MethodGet, "/collections", nil, &collections); err != nil {
		return nil, err
	}
	return collections, nil
}

// CreateCollection adds a collection and returns its server-assigned id.
func (c *Client) CreateCollection(ctx context.Context, fields models.CollectionFields) (int, error) {
	var created models.CreatedCollection
	if err := c.Do(ctx, http.MethodPost, "/collections", fields, &created); err != nil {
		return 0, err
	}
	return created.CollectionID, nil
}

// UpdateCollection replaces a collection's name and favorite flag.
func (c *Client) UpdateCollection(ctx context.Context, id int, fields models.CollectionFields) error {
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("/collections/%d", id), fields, nil)
}

// DeleteCollection removes a collection. Its tracks are kept.
func (c *Client) DeleteCollection(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/collections/%d", id), nil, nil)
}

// CollectionTracks lists the tracks in a collection.
func (c *Client) CollectionTracks(ctx context.Context, id int) ([]models.Track, error) {
	var tracks []models.Track
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/collections/%d/tracks", id), nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// AddCollectionTrack adds a track to a collection.
func (c *Client) AddCollectionTrack(ctx context.Context, collectionID, trackID int) error {
	endpoint := fmt.Sprintf("/collections/%d/tracks", collectionID)
	return c.Do(ctx, http.MethodPost, endpoint, models.AddTrackFields{TrackID: trackID}, nil)
}

// RemoveCollectionTrack removes a track from a collection.
func (c *Client) RemoveCollectionTrack(ctx context.Context, collectionID, trackID int) error {
	endpoint := fmt.Sprintf("/collections/%d/tracks/%d", collectionID, trackID)
	return c.Do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// SearchTracks queries the catalog. Unset filters are omitted from the query string.
func (c *Client) SearchTracks(ctx context.Context, filters models.SearchFilters) ([]models.Track, error) {
	endpoint := "/search/tracks"
	if q := filters.Query(); len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var tracks []models.Track
	if err := c.Do(ctx, http.MethodGet, endpoint, nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// AdminUsers lists every account.
func (c *Client) AdminUsers(ctx context.Context) ([]models.AdminUser, error) {
	var users []models.AdminUser
	if err := c.Do(ctx, http.MethodGet, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminTracks lists every track with its owner.
func (c *Client) AdminTracks(ctx context.Context) ([]models.Track, error) {
	var tracks []models.Track
	if err := c.Do(ctx, http.MethodGet, "/admin/tracks", nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// AdminAudit lists the audit log.
func (c *Client) AdminAudit(ctx context.Context) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	if err := c.Do(ctx, http.MethodGet, "/admin/audit", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
