package tasks

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/desertthunder/pldiff/internal/services"
	"github.com/desertthunder/pldiff/internal/shared"
)

type mockSource struct {
	mu        sync.Mutex
	playlists map[string][]services.RawEntry
	errs      map[string]error
	calls     []string
}

func (m *mockSource) FetchAll(ctx context.Context, playlistID string) ([]services.RawEntry, error) {
	m.mu.Lock()
	m.calls = append(m.calls, playlistID)
	m.mu.Unlock()

	if err, ok := m.errs[playlistID]; ok {
		return nil, err
	}
	if entries, ok := m.playlists[playlistID]; ok {
		return entries, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrEmptyOrInaccessible, playlistID)
}

func entries(ids ...string) []services.RawEntry {
	out := make([]services.RawEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, services.RawEntry{Track: &services.SpotifyTrack{
			ID:   id,
			Name: "Song " + id,
			URI:  "spotify:track:" + id,
		}})
	}
	return out
}

func drain(progress chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-progress:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestPlaylistEngine_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Normalizes Entries", func(t *testing.T) {
		source := &mockSource{playlists: map[string][]services.RawEntry{"left": entries("a", "b")}}
		engine := NewPlaylistEngine(source, nil)

		pl, err := engine.Load(ctx, "left")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pl.ID != "left" || len(pl.Tracks) != 2 {
			t.Fatalf("unexpected playlist: %+v", pl)
		}
		if pl.Tracks[1].Index != 1 || pl.Tracks[1].ID != "b" {
			t.Errorf("unexpected second track: %+v", pl.Tracks[1])
		}
	})

	t.Run("Shape Error", func(t *testing.T) {
		source := &mockSource{playlists: map[string][]services.RawEntry{"left": {{}}}}
		engine := NewPlaylistEngine(source, nil)

		_, err := engine.Load(ctx, "left")
		if !errors.Is(err, shared.ErrShape) {
			t.Errorf("expected ErrShape, got %v", err)
		}
	})

	t.Run("Fetch Error", func(t *testing.T) {
		source := &mockSource{errs: map[string]error{"left": shared.ErrTransport}}
		engine := NewPlaylistEngine(source, nil)

		_, err := engine.Load(ctx, "left")
		if !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})

	t.Run("No Source", func(t *testing.T) {
		engine := NewPlaylistEngine(nil, nil)

		_, err := engine.Load(ctx, "left")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestPlaylistEngine_Compare(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		source := &mockSource{playlists: map[string][]services.RawEntry{
			"left":  entries("A", "B", "C"),
			"right": entries("B", "C", "D"),
		}}
		engine := NewPlaylistEngine(source, nil)
		progress := make(chan ProgressUpdate, 16)

		cmp, err := engine.Compare(ctx, "left", "right", progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cmp.RunID == "" {
			t.Error("expected a run id")
		}
		if cmp.Left.ID != "left" || cmp.Right.ID != "right" {
			t.Errorf("unexpected playlists: %s / %s", cmp.Left.ID, cmp.Right.ID)
		}
		if !reflect.DeepEqual(cmp.Diff.Intersection, []string{"B", "C"}) {
			t.Errorf("expected intersection [B C], got %v", cmp.Diff.Intersection)
		}
		if !reflect.DeepEqual(cmp.Diff.OnlyLeft, []string{"A"}) {
			t.Errorf("expected only left [A], got %v", cmp.Diff.OnlyLeft)
		}
		if !reflect.DeepEqual(cmp.Diff.OnlyRight, []string{"D"}) {
			t.Errorf("expected only right [D], got %v", cmp.Diff.OnlyRight)
		}

		updates := drain(progress)
		if len(updates) != 5 {
			t.Fatalf("expected 5 updates, got %d", len(updates))
		}

		phases := map[Phase]bool{}
		for _, u := range updates {
			phases[u.Phase] = true
			if u.RunID != cmp.RunID {
				t.Errorf("update %s has run id %s, expected %s", u.Phase, u.RunID, cmp.RunID)
			}
		}
		for _, p := range []Phase{FetchLeft, FetchRight, Normalize, Compare, Done} {
			if !phases[p] {
				t.Errorf("missing %s update", p)
			}
		}
		if last := updates[len(updates)-1]; last.Phase != Done {
			t.Errorf("expected last update to be done, got %s", last.Phase)
		}
	})

	t.Run("Failure Aborts Comparison", func(t *testing.T) {
		tests := []struct {
			name     string
			errs     map[string]error
			expected error
		}{
			{name: "Left Fails", errs: map[string]error{"left": shared.ErrTransport}, expected: shared.ErrTransport},
			{name: "Right Fails", errs: map[string]error{"right": shared.ErrNoCredential}, expected: shared.ErrNoCredential},
			{name: "Right Empty", errs: map[string]error{"right": shared.ErrEmptyOrInaccessible}, expected: shared.ErrEmptyOrInaccessible},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				source := &mockSource{
					playlists: map[string][]services.RawEntry{
						"left":  entries("A"),
						"right": entries("B"),
					},
					errs: tt.errs,
				}
				engine := NewPlaylistEngine(source, nil)
				progress := make(chan ProgressUpdate, 16)

				cmp, err := engine.Compare(ctx, "left", "right", progress)
				if !errors.Is(err, tt.expected) {
					t.Errorf("expected %v, got %v", tt.expected, err)
				}
				if cmp != nil {
					t.Error("expected no comparison")
				}

				for _, u := range drain(progress) {
					if u.Phase == Compare || u.Phase == Done {
						t.Errorf("unexpected %s update after failure", u.Phase)
					}
				}
			})
		}
	})

	t.Run("Nil Progress Channel", func(t *testing.T) {
		source := &mockSource{playlists: map[string][]services.RawEntry{
			"left":  entries("A"),
			"right": entries("A"),
		}}
		engine := NewPlaylistEngine(source, nil)

		cmp, err := engine.Compare(ctx, "left", "right", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(cmp.Diff.Intersection, []string{"A"}) {
			t.Errorf("expected intersection [A], got %v", cmp.Diff.Intersection)
		}
	})

	t.Run("Full Channel Does Not Block", func(t *testing.T) {
		source := &mockSource{playlists: map[string][]services.RawEntry{
			"left":  entries("A"),
			"right": entries("B"),
		}}
		engine := NewPlaylistEngine(source, nil)
		progress := make(chan ProgressUpdate)

		if _, err := engine.Compare(ctx, "left", "right", progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected string
	}{
		{FetchLeft, "fetch_left"},
		{FetchRight, "fetch_right"},
		{Normalize, "normalize"},
		{Compare, "compare"},
		{Done, "done"},
		{Phase(99), ""},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.expected {
			t.Errorf("Phase(%d).String() = %q, expected %q", tt.phase, got, tt.expected)
		}
	}
}
