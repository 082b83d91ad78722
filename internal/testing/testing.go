// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
	calls    int
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	m.calls++
	return m.response, m.err
}

// Calls returns how many requests reached the round tripper.
func (m *MockRoundTripper) Calls() int {
	return m.calls
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// PlaylistID builds a valid 22 character playlist id from n.
func PlaylistID(n int) string {
	return fmt.Sprintf("pl%020d", n)
}

// FakeTrack is the minimal description of a track served by [FakeSpotify].
type FakeTrack struct {
	ID         string
	Name       string
	ArtistIDs  []string
	DurationMS int
	AlbumID    string
}

// Tracks builds n tracks with ids prefix0..prefix{n-1}.
func Tracks(prefix string, n int) []FakeTrack {
	tracks := make([]FakeTrack, n)
	for i := range tracks {
		id := prefix + strconv.Itoa(i)
		tracks[i] = FakeTrack{
			ID:         id,
			Name:       "Song " + id,
			ArtistIDs:  []string{"artist-" + id},
			DurationMS: 180000 + i,
			AlbumID:    "album-" + prefix,
		}
	}
	return tracks
}

// PageRequest records one playlist page request received by [FakeSpotify].
type PageRequest struct {
	PlaylistID    string
	Offset        int
	Limit         int
	Market        string
	Fields        string
	Authorization string
}

// FakeSpotify serves the token endpoint and the playlist tracks endpoint of the Spotify Web API.
//
// Token requests issue "token-1", "token-2", ... unless TokenStatus/TokenBody override the response.
// PageStatus forces a status code on every page request when non-zero.
// BareTokenResponse leaves the token response without a Content-Type, so net/http sniffs one.
type FakeSpotify struct {
	Playlists         map[string][]FakeTrack
	TokenStatus       int
	TokenBody         string
	ExpiresIn         int
	PageStatus        int
	BareTokenResponse bool

	mu         sync.Mutex
	tokenCalls int
	tokenForms []map[string]string
	requests   []PageRequest
}

// NewFakeSpotify starts a server that is closed when the test ends.
func NewFakeSpotify(t *testing.T) (*FakeSpotify, *httptest.Server) {
	t.Helper()

	fake := &FakeSpotify{
		Playlists: map[string][]FakeTrack{},
		ExpiresIn: 3600,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", fake.handleToken)
	mux.HandleFunc("GET /v1/playlists/{id}/tracks", fake.handleTracks)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return fake, srv
}

// TokenURL returns the token endpoint of srv.
func TokenURL(srv *httptest.Server) string {
	return srv.URL + "/api/token"
}

// BaseURL returns the Web API base of srv.
func BaseURL(srv *httptest.Server) string {
	return srv.URL + "/v1"
}

// TokenCalls returns the number of token requests served.
func (f *FakeSpotify) TokenCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenCalls
}

// TokenForms returns the decoded form bodies of every token request.
func (f *FakeSpotify) TokenForms() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.tokenForms...)
}

// Requests returns the page requests served so far.
func (f *FakeSpotify) Requests() []PageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PageRequest(nil), f.requests...)
}

func (f *FakeSpotify) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.tokenCalls++
	n := f.tokenCalls
	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}
	f.tokenForms = append(f.tokenForms, form)
	status, body, expiresIn, bare := f.TokenStatus, f.TokenBody, f.ExpiresIn, f.BareTokenResponse
	f.mu.Unlock()

	if !bare {
		w.Header().Set("Content-Type", "application/json")
	}

	if status != 0 || body != "" {
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
		return
	}

	if form["grant_type"] != "client_credentials" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"unsupported_grant_type"}`)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"access_token": fmt.Sprintf("token-%d", n),
		"token_type":   "Bearer",
		"expires_in":   expiresIn,
	})
}

func (f *FakeSpotify) handleTracks(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	f.mu.Lock()
	f.requests = append(f.requests, PageRequest{
		PlaylistID:    id,
		Offset:        offset,
		Limit:         limit,
		Market:        q.Get("market"),
		Fields:        q.Get("fields"),
		Authorization: r.Header.Get("Authorization"),
	})
	tracks, ok := f.Playlists[id]
	pageStatus := f.PageStatus
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if pageStatus != 0 {
		w.WriteHeader(pageStatus)
		fmt.Fprintf(w, `{"error":{"status":%d,"message":"forced"}}`, pageStatus)
		return
	}
	if r.Header.Get("Authorization") == "" {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"status":401,"message":"No token provided"}}`)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"status":404,"message":"Resource not found"}}`)
		return
	}

	end := min(offset+limit, len(tracks))
	start := min(offset, end)

	items := make([]map[string]any, 0, end-start)
	for _, track := range tracks[start:end] {
		items = append(items, map[string]any{"track": trackJSON(track)})
	}

	var next any
	if end < len(tracks) {
		next = fmt.Sprintf("%s?offset=%d&limit=%d", r.URL.Path, end, limit)
	}

	json.NewEncoder(w).Encode(map[string]any{
		"items":  items,
		"offset": offset,
		"limit":  limit,
		"total":  len(tracks),
		"next":   next,
	})
}

func artistJSON(id string) map[string]any {
	return map[string]any{
		"id":            id,
		"name":          "Name " + id,
		"type":          "artist",
		"uri":           "spotify:artist:" + id,
		"external_urls": map[string]string{"spotify": "https://open.spotify.com/artist/" + id},
	}
}

func trackJSON(t FakeTrack) map[string]any {
	artists := make([]map[string]any, 0, len(t.ArtistIDs))
	for _, id := range t.ArtistIDs {
		artists = append(artists, artistJSON(id))
	}

	return map[string]any{
		"id":            t.ID,
		"name":          t.Name,
		"uri":           "spotify:track:" + t.ID,
		"duration_ms":   t.DurationMS,
		"external_urls": map[string]string{"spotify": "https://open.spotify.com/track/" + t.ID},
		"artists":       artists,
		"album": map[string]any{
			"id":            t.AlbumID,
			"name":          "Album " + t.AlbumID,
			"uri":           "spotify:album:" + t.AlbumID,
			"external_urls": map[string]string{"spotify": "https://open.spotify.com/album/" + t.AlbumID},
			"artists":       artists,
		},
	}
}
