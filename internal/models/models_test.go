package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp(t *testing.T) {
	t.Run("RFC 1123", func(t *testing.T) {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(`"Tue, 05 Mar 2024 10:15:00 GMT"`), &ts))
		assert.Equal(t, 2024, ts.Year())
		assert.Equal(t, time.March, ts.Month())
		assert.Equal(t, 10, ts.Hour())
	})

	t.Run("RFC 3339", func(t *testing.T) {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(`"2024-03-05T10:15:00Z"`), &ts))
		assert.Equal(t, 5, ts.Day())
	})

	t.Run("naive ISO", func(t *testing.T) {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(`"2024-03-05T10:15:00.123456"`), &ts))
		assert.Equal(t, 15, ts.Minute())
	})

	t.Run("null and empty are unknown", func(t *testing.T) {
		var a, b Timestamp
		require.NoError(t, json.Unmarshal([]byte(`null`), &a))
		require.NoError(t, json.Unmarshal([]byte(`""`), &b))
		assert.True(t, a.IsZero())
		assert.True(t, b.IsZero())
	})

	t.Run("garbage", func(t *testing.T) {
		var ts Timestamp
		assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	})

	t.Run("marshal", func(t *testing.T) {
		out, err := json.Marshal(struct {
			At Timestamp `json:"at"`
		}{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"at":null}`, string(out))
	})
}

func TestTrackDecoding(t *testing.T) {
	body := `{"track_id":3,"title":"Intro","artist_id":null,"artist_name":"Band",
		"genre_id":2,"genre_name":"Rock","bpm":null,"duration_sec":65,
		"created_at":"Tue, 05 Mar 2024 10:15:00 GMT"}`

	var track Track
	require.NoError(t, json.Unmarshal([]byte(body), &track))

	assert.Equal(t, 3, track.ID)
	assert.Nil(t, track.ArtistID)
	require.NotNil(t, track.GenreID)
	assert.Equal(t, 2, *track.GenreID)
	assert.Nil(t, track.BPM)
	assert.Equal(t, 65, track.Duration())
	assert.True(t, track.AddedAt.IsZero())
}

func TestAuditEntryDetails(t *testing.T) {
	var entry AuditEntry
	require.NoError(t, json.Unmarshal([]byte(`{"log_id":1,"details":{ "name": "X" }}`), &entry))
	assert.Equal(t, `{"name":"X"}`, entry.DetailsText())

	assert.Empty(t, AuditEntry{}.DetailsText())
}

func TestFieldValidation(t *testing.T) {
	t.Run("artist name required", func(t *testing.T) {
		assert.Error(t, ArtistFields{}.Validate())
		assert.Error(t, ArtistFields{Name: "   "}.Validate())
		assert.NoError(t, ArtistFields{Name: "X"}.Validate())
	})

	t.Run("track requires title artist and genre", func(t *testing.T) {
		assert.Error(t, TrackFields{ArtistID: 1, GenreID: 1}.Validate())
		assert.Error(t, TrackFields{Title: "T", GenreID: 1}.Validate())
		assert.Error(t, TrackFields{Title: "T", ArtistID: 1}.Validate())
		assert.NoError(t, TrackFields{Title: "T", ArtistID: 1, GenreID: 1}.Validate())
	})

	t.Run("collection name required", func(t *testing.T) {
		assert.Error(t, CollectionFields{IsFavorite: true}.Validate())
		assert.NoError(t, CollectionFields{Name: "Faves"}.Validate())
	})

	t.Run("credentials", func(t *testing.T) {
		assert.Error(t, Credentials{Login: "a"}.Validate())
		assert.NoError(t, Credentials{Login: "a", Password: "b"}.Validate())
	})

	t.Run("registration", func(t *testing.T) {
		assert.Error(t, Registration{Login: "a", Password: "b"}.Validate())
		assert.NoError(t, Registration{Login: "a", Password: "b", Email: "a@b.c"}.Validate())
	})

	t.Run("track fields send null for unset optionals", func(t *testing.T) {
		out, err := json.Marshal(TrackFields{Title: "T", ArtistID: 1, GenreID: 2})
		require.NoError(t, err)
		assert.JSONEq(t, `{"title":"T","artist_id":1,"genre_id":2,"bpm":null,"duration_sec":null}`, string(out))
	})
}

func TestSearchFilters(t *testing.T) {
	t.Run("empty filters send nothing", func(t *testing.T) {
		f := SearchFilters{Title: "  "}
		assert.True(t, f.IsEmpty())
		assert.Empty(t, f.Query().Encode())
	})

	t.Run("only set filters are sent", func(t *testing.T) {
		f := SearchFilters{Artist: "Band", GenreID: 4, DurationSec: 200}
		q := f.Query()
		assert.Equal(t, "Band", q.Get("artist"))
		assert.Equal(t, "4", q.Get("genre_id"))
		assert.Equal(t, "200", q.Get("duration"))
		assert.False(t, q.Has("title"))
		assert.False(t, q.Has("bpm"))
	})
}
