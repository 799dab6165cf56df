package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/musicat/internal/models"
	"github.com/go-chi/chi/v5"
)

// Default credentials accepted by a fresh [Backend].
const (
	BackendLogin    = "alice"
	BackendPassword = "secret"
	BackendToken    = "test-token"
)

type failure struct {
	status  int
	message string
}

type collectionRow struct {
	models.Collection
	trackIDs []int
	added    map[int]time.Time
}

// Backend is an in-memory stand-in for the catalog REST service.
//
// Every route counts its hits by "METHOD pattern" so tests can assert how many
// requests a flow issued.
type Backend struct {
	mu sync.Mutex

	profile     models.Profile
	omitIDs     bool
	passwords   map[string]string
	token       string
	genres      []models.Genre
	artists     []models.Artist
	tracks      []models.Track
	collections []*collectionRow
	users       []models.AdminUser
	audit       []models.AuditEntry
	nextID      int

	hits     map[string]int
	failures map[string]failure
	lastAuth string
	lastBody map[string]json.RawMessage
	lastQry  url.Values

	router chi.Router
}

// NewBackend returns a backend with one non-admin user and no catalog data.
func NewBackend() *Backend {
	b := &Backend{
		profile: models.Profile{
			UserID:    1,
			Login:     BackendLogin,
			FirstName: "Alice",
			LastName:  "Liddell",
			Email:     "alice@example.com",
		},
		passwords: map[string]string{BackendLogin: BackendPassword},
		token:     BackendToken,
		nextID:    100,
		hits:      map[string]int{},
		failures:  map[string]failure{},
	}
	b.users = []models.AdminUser{{
		UserID: 1, Login: BackendLogin, FirstName: "Alice", LastName: "Liddell",
		Email: "alice@example.com", IsActive: true,
		CreatedAt: models.Timestamp{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}}
	b.routes()
	return b
}

// Start serves the backend over httptest until the test ends.
func (b *Backend) Start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(b.router)
	t.Cleanup(srv.Close)
	return srv
}

// SetAdmin toggles the administrator flag of the signed-in user.
func (b *Backend) SetAdmin(admin bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profile.IsAdmin = admin
	b.users[0].IsAdmin = admin
}

// OmitTrackIDs drops artist_id and genre_id from track listings, as older servers did.
func (b *Backend) OmitTrackIDs(omit bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.omitIDs = omit
}

// Profile returns the stored profile.
func (b *Backend) Profile() models.Profile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profile
}

// Fail makes the route answer status with message until cleared with status 0.
func (b *Backend) Fail(method, pattern string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + pattern
	if status == 0 {
		delete(b.failures, key)
		return
	}
	b.failures[key] = failure{status: status, message: message}
}

// Hits returns how many requests reached the route.
func (b *Backend) Hits(method, pattern string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+pattern]
}

// TotalHits returns the number of requests served.
func (b *Backend) TotalHits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.hits {
		total += n
	}
	return total
}

// ResetHits zeroes every counter.
func (b *Backend) ResetHits() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hits = map[string]int{}
}

// LastAuthorization returns the Authorization header of the latest request.
func (b *Backend) LastAuthorization() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth
}

// LastQuery returns the query string of the latest request.
func (b *Backend) LastQuery() url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastQry
}

// LastBody returns the decoded top-level keys of the latest JSON request body.
func (b *Backend) LastBody() map[string]json.RawMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastBody
}

// SeedGenre adds a genre.
func (b *Backend) SeedGenre(name string) models.Genre {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := models.Genre{ID: b.id(), Name: name}
	b.genres = append(b.genres, g)
	return g
}

// SeedArtist adds an artist.
func (b *Backend) SeedArtist(name string) models.Artist {
	b.mu.Lock()
	defer b.mu.Unlock()
	a := models.Artist{ID: b.id(), Name: name}
	b.artists = append(b.artists, a)
	return a
}

// SeedTrack adds a track; bpm and duration of zero are stored as null.
func (b *Backend) SeedTrack(title string, artistID, genreID, bpm, duration int) models.Track {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := models.Track{
		ID:        b.id(),
		Title:     title,
		ArtistID:  intPtr(artistID),
		GenreID:   intPtr(genreID),
		BPM:       optional(bpm),
		CreatedAt: models.Timestamp{Time: time.Date(2024, 3, 5, 10, 15, 0, 0, time.UTC)},
		UserLogin: b.profile.Login,
	}
	t.DurationSec = optional(duration)
	b.tracks = append(b.tracks, t)
	return b.decorate(t)
}

// SeedCollection adds a collection holding trackIDs.
func (b *Backend) SeedCollection(name string, favorite bool, trackIDs ...int) models.Collection {
	b.mu.Lock()
	defer b.mu.Unlock()
	row := &collectionRow{
		Collection: models.Collection{
			ID:         b.id(),
			Name:       name,
			IsFavorite: favorite,
			CreatedAt:  models.Timestamp{Time: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
		},
		added: map[int]time.Time{},
	}
	for _, id := range trackIDs {
		row.trackIDs = append(row.trackIDs, id)
		row.added[id] = time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	}
	b.collections = append(b.collections, row)
	return b.collectionView(row)
}

// SeedAudit adds an audit log entry.
func (b *Backend) SeedAudit(op, table string, details string) models.AuditEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := models.AuditEntry{
		ID:            b.id(),
		UserLogin:     b.profile.Login,
		OperationType: op,
		TableName:     table,
		OperationTime: models.Timestamp{Time: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		Details:       json.RawMessage(details),
	}
	b.audit = append(b.audit, e)
	return e
}

// CollectionTrackIDs returns the membership of a collection.
func (b *Backend) CollectionTrackIDs(id int) []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if row := b.findCollection(id); row != nil {
		return append([]int(nil), row.trackIDs...)
	}
	return nil
}

func (b *Backend) routes() {
	r := chi.NewRouter()

	b.handle(r, http.MethodPost, "/auth/login", false, b.login)
	b.handle(r, http.MethodPost, "/auth/register", false, b.register)
	b.handle(r, http.MethodGet, "/health", false, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "timestamp": time.Now().UTC().Format(time.RFC1123)})
	})

	b.handle(r, http.MethodGet, "/profile", true, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, b.profile)
	})
	b.handle(r, http.MethodPut, "/profile", true, b.updateProfile)
	b.handle(r, http.MethodGet, "/genres", true, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, nonNil(b.genres))
	})

	b.handle(r, http.MethodGet, "/artists", true, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, nonNil(b.artists))
	})
	b.handle(r, http.MethodPost, "/artists", true, b.createArtist)
	b.handle(r, http.MethodPut, "/artists/{id}", true, b.updateArtist)
	b.handle(r, http.MethodDelete, "/artists/{id}", true, b.deleteArtist)
	b.handle(r, http.MethodGet, "/artists/{id}/tracks-count", true, b.artistTracksCount)

	b.handle(r, http.MethodGet, "/tracks", true, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, b.trackViews(b.tracks))
	})
	b.handle(r, http.MethodPost, "/tracks", true, b.createTrack)
	b.handle(r, http.MethodPut, "/tracks/{id}", true, b.updateTrack)
	b.handle(r, http.MethodDelete, "/tracks/{id}", true, b.deleteTrack)

	b.handle(r, http.MethodGet, "/collections", true, func(w http.ResponseWriter, _ *http.Request) {
		out := make([]models.Collection, 0, len(b.collections))
		for _, row := range b.collections {
			out = append(out, b.collectionView(row))
		}
		writeJSON(w, http.StatusOK, out)
	})
	b.handle(r, http.MethodPost, "/collections", true, b.createCollection)
	b.handle(r, http.MethodPut, "/collections/{id}", true, b.updateCollection)
	b.handle(r, http.MethodDelete, "/collections/{id}", true, b.deleteCollection)
	b.handle(r, http.MethodGet, "/collections/{id}/tracks", true, b.collectionTracks)
	b.handle(r, http.MethodPost, "/collections/{id}/tracks", true, b.addCollectionTrack)
	b.handle(r, http.MethodDelete, "/collections/{id}/tracks/{trackID}", true, b.removeCollectionTrack)

	b.handle(r, http.MethodGet, "/search/tracks", true, b.search)

	b.handle(r, http.MethodGet, "/admin/users", true, b.adminOnly(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, b.users)
	}))
	b.handle(r, http.MethodGet, "/admin/tracks", true, b.adminOnly(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, b.trackViews(b.tracks))
	}))
	b.handle(r, http.MethodGet, "/admin/audit", true, b.adminOnly(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, nonNil(b.audit))
	}))

	b.router = r
}

// handle registers h under method and pattern. Handlers run with b.mu held.
func (b *Backend) handle(r chi.Router, method, pattern string, protected bool, h http.HandlerFunc) {
	key := method + " " + pattern
	r.MethodFunc(method, pattern, func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		b.hits[key]++
		b.lastAuth = req.Header.Get("Authorization")
		b.lastQry = req.URL.Query()
		b.lastBody = nil
		if req.Body != nil {
			var body map[string]json.RawMessage
			if err := json.NewDecoder(req.Body).Decode(&body); err == nil {
				b.lastBody = body
			}
		}

		if f, ok := b.failures[key]; ok {
			writeMessage(w, f.status, f.message)
			return
		}
		if protected && b.lastAuth != "Bearer "+b.token {
			writeMessage(w, http.StatusUnauthorized, "Token is invalid!")
			return
		}
		h(w, req)
	})
}

func (b *Backend) adminOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !b.profile.IsAdmin {
			writeMessage(w, http.StatusForbidden, "Admin access required")
			return
		}
		h(w, r)
	}
}

func (b *Backend) login(w http.ResponseWriter, _ *http.Request) {
	login := str(b.lastBody, "login")
	password := str(b.lastBody, "password")
	if login == "" || password == "" {
		writeMessage(w, http.StatusBadRequest, "login and password are required")
		return
	}
	if want, ok := b.passwords[login]; !ok || want != password {
		writeMessage(w, http.StatusUnauthorized, "Invalid login or password")
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResult{Token: b.token, User: b.profile})
}

func (b *Backend) register(w http.ResponseWriter, _ *http.Request) {
	login := str(b.lastBody, "login")
	if login == "" || str(b.lastBody, "password") == "" || str(b.lastBody, "email") == "" {
		writeMessage(w, http.StatusBadRequest, "all fields are required")
		return
	}
	if _, exists := b.passwords[login]; exists {
		writeMessage(w, http.StatusBadRequest, "login already taken")
		return
	}
	b.passwords[login] = str(b.lastBody, "password")
	writeJSON(w, http.StatusCreated, map[string]any{"message": "registered", "user_id": b.id()})
}

func (b *Backend) updateProfile(w http.ResponseWriter, _ *http.Request) {
	b.profile.FirstName = str(b.lastBody, "first_name")
	b.profile.LastName = str(b.lastBody, "last_name")
	b.profile.Email = str(b.lastBody, "email")
	b.profile.AvatarURL = str(b.lastBody, "avatar_url")
	writeMessage(w, http.StatusOK, "profile updated")
}

func (b *Backend) createArtist(w http.ResponseWriter, _ *http.Request) {
	name := str(b.lastBody, "name")
	if name == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	a := models.Artist{ID: b.id(), Name: name}
	b.artists = append(b.artists, a)
	writeJSON(w, http.StatusCreated, models.CreatedArtist{ArtistID: a.ID})
}

func (b *Backend) updateArtist(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	i := slices.IndexFunc(b.artists, func(a models.Artist) bool { return a.ID == id })
	if i < 0 {
		writeMessage(w, http.StatusForbidden, "not your artist")
		return
	}
	b.artists[i].Name = str(b.lastBody, "name")
	writeMessage(w, http.StatusOK, "artist updated")
}

func (b *Backend) deleteArtist(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	i := slices.IndexFunc(b.artists, func(a models.Artist) bool { return a.ID == id })
	if i < 0 {
		writeMessage(w, http.StatusForbidden, "not your artist")
		return
	}
	b.artists = slices.Delete(b.artists, i, i+1)
	b.tracks = slices.DeleteFunc(b.tracks, func(t models.Track) bool {
		return t.ArtistID != nil && *t.ArtistID == id
	})
	writeMessage(w, http.StatusOK, "artist deleted")
}

func (b *Backend) artistTracksCount(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	n := 0
	for _, t := range b.tracks {
		if t.ArtistID != nil && *t.ArtistID == id {
			n++
		}
	}
	writeJSON(w, http.StatusOK, models.TracksCount{TracksCount: n})
}

func (b *Backend) createTrack(w http.ResponseWriter, _ *http.Request) {
	title := str(b.lastBody, "title")
	if title == "" {
		writeMessage(w, http.StatusBadRequest, "title is required")
		return
	}
	t := models.Track{
		ID:          b.id(),
		Title:       title,
		ArtistID:    num(b.lastBody, "artist_id"),
		GenreID:     num(b.lastBody, "genre_id"),
		BPM:         num(b.lastBody, "bpm"),
		DurationSec: num(b.lastBody, "duration_sec"),
		CreatedAt:   models.Timestamp{Time: time.Now().UTC()},
		UserLogin:   b.profile.Login,
	}
	b.tracks = append(b.tracks, t)
	writeJSON(w, http.StatusCreated, models.CreatedTrack{TrackID: t.ID})
}

func (b *Backend) updateTrack(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	i := slices.IndexFunc(b.tracks, func(t models.Track) bool { return t.ID == id })
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "track not found")
		return
	}
	t := &b.tracks[i]
	t.Title = str(b.lastBody, "title")
	t.ArtistID = num(b.lastBody, "artist_id")
	t.GenreID = num(b.lastBody, "genre_id")
	t.BPM = num(b.lastBody, "bpm")
	t.DurationSec = num(b.lastBody, "duration_sec")
	writeMessage(w, http.StatusOK, "track updated")
}

func (b *Backend) deleteTrack(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	i := slices.IndexFunc(b.tracks, func(t models.Track) bool { return t.ID == id })
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "track not found")
		return
	}
	b.tracks = slices.Delete(b.tracks, i, i+1)
	for _, row := range b.collections {
		row.trackIDs = slices.DeleteFunc(row.trackIDs, func(tid int) bool { return tid == id })
	}
	writeMessage(w, http.StatusOK, "track deleted")
}

func (b *Backend) createCollection(w http.ResponseWriter, _ *http.Request) {
	name := str(b.lastBody, "name")
	if name == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	row := &collectionRow{
		Collection: models.Collection{
			ID:         b.id(),
			Name:       name,
			IsFavorite: boolean(b.lastBody, "is_favorite"),
			CreatedAt:  models.Timestamp{Time: time.Now().UTC()},
		},
		added: map[int]time.Time{},
	}
	b.collections = append(b.collections, row)
	writeJSON(w, http.StatusCreated, models.CreatedCollection{CollectionID: row.ID})
}

func (b *Backend) updateCollection(w http.ResponseWriter, r *http.Request) {
	row := b.findCollection(pathID(r, "id"))
	if row == nil {
		writeMessage(w, http.StatusNotFound, "collection not found")
		return
	}
	row.Name = str(b.lastBody, "name")
	row.IsFavorite = boolean(b.lastBody, "is_favorite")
	writeMessage(w, http.StatusOK, "collection updated")
}

func (b *Backend) deleteCollection(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	i := slices.IndexFunc(b.collections, func(c *collectionRow) bool { return c.ID == id })
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "collection not found")
		return
	}
	b.collections = slices.Delete(b.collections, i, i+1)
	writeMessage(w, http.StatusOK, "collection deleted")
}

func (b *Backend) collectionTracks(w http.ResponseWriter, r *http.Request) {
	row := b.findCollection(pathID(r, "id"))
	if row == nil {
		writeMessage(w, http.StatusNotFound, "collection not found")
		return
	}
	out := make([]models.Track, 0, len(row.trackIDs))
	for _, tid := range row.trackIDs {
		i := slices.IndexFunc(b.tracks, func(t models.Track) bool { return t.ID == tid })
		if i < 0 {
			continue
		}
		t := b.decorate(b.tracks[i])
		t.AddedAt = models.Timestamp{Time: row.added[tid]}
		out = append(out, t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) addCollectionTrack(w http.ResponseWriter, r *http.Request) {
	row := b.findCollection(pathID(r, "id"))
	if row == nil {
		writeMessage(w, http.StatusNotFound, "collection not found")
		return
	}
	tid := num(b.lastBody, "track_id")
	if tid == nil {
		writeMessage(w, http.StatusBadRequest, "track_id is required")
		return
	}
	if slices.Contains(row.trackIDs, *tid) {
		writeMessage(w, http.StatusBadRequest, "track already in collection")
		return
	}
	row.trackIDs = append(row.trackIDs, *tid)
	row.added[*tid] = time.Now().UTC()
	writeMessage(w, http.StatusCreated, "track added")
}

func (b *Backend) removeCollectionTrack(w http.ResponseWriter, r *http.Request) {
	row := b.findCollection(pathID(r, "id"))
	if row == nil {
		writeMessage(w, http.StatusNotFound, "collection not found")
		return
	}
	tid := pathID(r, "trackID")
	row.trackIDs = slices.DeleteFunc(row.trackIDs, func(id int) bool { return id == tid })
	writeMessage(w, http.StatusOK, "track removed")
}

func (b *Backend) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	title := strings.ToLower(q.Get("title"))
	artist := strings.ToLower(q.Get("artist"))
	genreID, _ := strconv.Atoi(q.Get("genre_id"))
	bpm, _ := strconv.Atoi(q.Get("bpm"))
	duration, _ := strconv.Atoi(q.Get("duration"))

	var out []models.Track
	for _, t := range b.trackViews(b.tracks) {
		switch {
		case title != "" && !strings.Contains(strings.ToLower(t.Title), title):
		case artist != "" && !strings.Contains(strings.ToLower(t.ArtistName), artist):
		case genreID != 0 && (t.GenreID == nil || *t.GenreID != genreID) && b.genreName(genreID) != t.GenreName:
		case bpm != 0 && (t.BPM == nil || *t.BPM != bpm):
		case duration != 0 && (t.DurationSec == nil || *t.DurationSec != duration):
		default:
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, nonNil(out))
}

func (b *Backend) id() int {
	b.nextID++
	return b.nextID
}

func (b *Backend) findCollection(id int) *collectionRow {
	for _, row := range b.collections {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func (b *Backend) collectionView(row *collectionRow) models.Collection {
	c := row.Collection
	c.TracksCount = len(row.trackIDs)
	return c
}

func (b *Backend) genreName(id int) string {
	for _, g := range b.genres {
		if g.ID == id {
			return g.Name
		}
	}
	return ""
}

// decorate fills the display names a listing carries.
func (b *Backend) decorate(t models.Track) models.Track {
	if t.ArtistID != nil {
		for _, a := range b.artists {
			if a.ID == *t.ArtistID {
				t.ArtistName = a.Name
			}
		}
	}
	if t.GenreID != nil {
		t.GenreName = b.genreName(*t.GenreID)
	}
	if b.omitIDs {
		t.ArtistID, t.GenreID = nil, nil
	}
	return t
}

func (b *Backend) trackViews(tracks []models.Track) []models.Track {
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, b.decorate(t))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.Ack{Message: message})
}

func pathID(r *http.Request, key string) int {
	id, _ := strconv.Atoi(chi.URLParam(r, key))
	return id
}

func str(body map[string]json.RawMessage, key string) string {
	var s string
	if raw, ok := body[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return strings.TrimSpace(s)
}

func num(body map[string]json.RawMessage, key string) *int {
	raw, ok := body[key]
	if !ok {
		return nil
	}
	var n *int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return n
}

func boolean(body map[string]json.RawMessage, key string) bool {
	var v bool
	if raw, ok := body[key]; ok {
		_ = json.Unmarshal(raw, &v)
	}
	return v
}

func intPtr(v int) *int { return &v }

func optional(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
