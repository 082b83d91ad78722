package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/desertthunder/pldiff/internal/models"
	"github.com/desertthunder/pldiff/internal/shared"
	"github.com/desertthunder/pldiff/internal/tasks"
	tu "github.com/desertthunder/pldiff/internal/testing"
	"golang.org/x/oauth2"
)

type mockComparer struct {
	playlists map[string]*models.PlaylistTracks
	err       error
}

func (m *mockComparer) Load(ctx context.Context, playlistID string) (*models.PlaylistTracks, error) {
	if m.err != nil {
		return nil, m.err
	}
	if pl, ok := m.playlists[playlistID]; ok {
		return pl, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrEmptyOrInaccessible, playlistID)
}

func (m *mockComparer) Compare(ctx context.Context, leftID, rightID string, progress chan<- tasks.ProgressUpdate) (*models.Comparison, error) {
	left, err := m.Load(ctx, leftID)
	if err != nil {
		return nil, err
	}
	right, err := m.Load(ctx, rightID)
	if err != nil {
		return nil, err
	}
	return &models.Comparison{RunID: "run", Left: *left, Right: *right, Diff: tasks.Diff(left.Tracks, right.Tracks)}, nil
}

type mockTokens struct{ ok bool }

func (m mockTokens) Current() (*oauth2.Token, bool) {
	if !m.ok {
		return nil, false
	}
	return &oauth2.Token{AccessToken: "x"}, true
}

func playlist(id string, trackIDs ...string) *models.PlaylistTracks {
	pl := &models.PlaylistTracks{ID: id}
	for i, tid := range trackIDs {
		pl.Tracks = append(pl.Tracks, models.CanonicalTrack{Index: i, ID: tid, Title: "Song " + tid})
	}
	return pl
}

func newTestAPI(comparer tasks.Comparer, tokens mockTokens) http.Handler {
	r := NewBasicRouter()
	r.Handler(NewAPI(comparer, tokens, nil))
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	return body.Error
}

func TestAPI(t *testing.T) {
	left, right := tu.PlaylistID(1), tu.PlaylistID(2)
	comparer := &mockComparer{playlists: map[string]*models.PlaylistTracks{
		left:  playlist(left, "A", "B", "C"),
		right: playlist(right, "B", "C", "D"),
	}}

	t.Run("Health", func(t *testing.T) {
		for _, ok := range []bool{true, false} {
			rec := get(t, newTestAPI(comparer, mockTokens{ok: ok}), "/health")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}

			var body healthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Status != "ok" || body.Credential != ok {
				t.Errorf("unexpected health %+v", body)
			}
		}
	})

	t.Run("Tracks", func(t *testing.T) {
		h := newTestAPI(comparer, mockTokens{ok: true})

		t.Run("By ID", func(t *testing.T) {
			rec := get(t, h, "/playlists/"+left+"/tracks")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %s", ct)
			}

			var pl models.PlaylistTracks
			if err := json.Unmarshal(rec.Body.Bytes(), &pl); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if pl.ID != left || len(pl.Tracks) != 3 {
				t.Errorf("unexpected playlist %+v", pl)
			}
		})

		t.Run("By Escaped Link", func(t *testing.T) {
			link := url.PathEscape("https://open.spotify.com/playlist/" + left)
			rec := get(t, h, "/playlists/"+link+"/tracks")
			if rec.Code != http.StatusOK {
				t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
		})

		t.Run("Invalid ID", func(t *testing.T) {
			rec := get(t, h, "/playlists/nope/tracks")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if msg := decodeError(t, rec); msg == "" {
				t.Error("expected an error message")
			}
		})

		t.Run("Unknown Playlist", func(t *testing.T) {
			rec := get(t, h, "/playlists/"+tu.PlaylistID(3)+"/tracks")
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404, got %d", rec.Code)
			}
		})

		t.Run("Wrong Method", func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/playlists/"+left+"/tracks", nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("expected 405, got %d", rec.Code)
			}
		})
	})

	t.Run("Diff", func(t *testing.T) {
		h := newTestAPI(comparer, mockTokens{ok: true})

		t.Run("Success", func(t *testing.T) {
			rec := get(t, h, "/diff?left="+left+"&right=spotify:playlist:"+right)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var cmp models.Comparison
			if err := json.Unmarshal(rec.Body.Bytes(), &cmp); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if len(cmp.Diff.Intersection) != 2 || len(cmp.Diff.OnlyLeft) != 1 || len(cmp.Diff.OnlyRight) != 1 {
				t.Errorf("unexpected diff %+v", cmp.Diff)
			}
		})

		t.Run("Missing Parameter", func(t *testing.T) {
			rec := get(t, h, "/diff?left="+left)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	})

	t.Run("Upstream Errors", func(t *testing.T) {
		tests := []struct {
			name     string
			err      error
			expected int
		}{
			{name: "No Credential", err: shared.ErrNoCredential, expected: http.StatusServiceUnavailable},
			{name: "Transport", err: fmt.Errorf("%w: status 500", shared.ErrTransport), expected: http.StatusBadGateway},
			{name: "Shape", err: &shared.ShapeError{Index: 0, Field: "id"}, expected: http.StatusBadGateway},
			{name: "Unknown", err: errors.New("boom"), expected: http.StatusInternalServerError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h := newTestAPI(&mockComparer{err: tt.err}, mockTokens{})

				rec := get(t, h, "/playlists/"+left+"/tracks")
				if rec.Code != tt.expected {
					t.Errorf("expected %d, got %d", tt.expected, rec.Code)
				}
				if msg := decodeError(t, rec); msg != tt.err.Error() {
					t.Errorf("expected message %q, got %q", tt.err.Error(), msg)
				}
			})
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{shared.ErrInvalidPlaylistID, http.StatusBadRequest},
		{shared.ErrInvalidMarket, http.StatusBadRequest},
		{shared.ErrMissingArgument, http.StatusBadRequest},
		{shared.ErrEmptyOrInaccessible, http.StatusNotFound},
		{shared.ErrNoCredential, http.StatusServiceUnavailable},
		{shared.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{shared.ErrTransport, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.expected {
			t.Errorf("StatusFor(%v) = %d, expected %d", tt.err, got, tt.expected)
		}
	}
}
