// package models defines the data model for playlist comparison
package models

import (
	"slices"
	"strings"
)

// ArtistRef is a flattened artist reference attached to a track or album.
type ArtistRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	URI         string `json:"uri"`
	ExternalURL string `json:"external_url"`
}

// AlbumRef is a flattened album reference attached to a track.
type AlbumRef struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	URI         string      `json:"uri"`
	ExternalURL string      `json:"external_url"`
	Artists     []ArtistRef `json:"artists"`
}

// CanonicalTrack is the normalized representation of one playlist entry.
//
// Index is the entry's position in its playlist, contiguous from 0.
type CanonicalTrack struct {
	Index       int         `json:"index"`
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	URI         string      `json:"uri"`
	DurationMS  int         `json:"duration_ms"`
	ExternalURL string      `json:"external_url"`
	Album       AlbumRef    `json:"album"`
	Artists     []ArtistRef `json:"artists"`
}

// ArtistIDs returns the distinct artist ids of the track, sorted.
func (t CanonicalTrack) ArtistIDs() []string {
	ids := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		ids = append(ids, a.ID)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// ArtistNames joins the artist names in credit order.
func (t CanonicalTrack) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

// PlaylistTracks is the complete, ordered result of loading one playlist.
type PlaylistTracks struct {
	ID     string           `json:"id"`
	Tracks []CanonicalTrack `json:"tracks"`
}

// ByID indexes the first occurrence of every track id.
func (p PlaylistTracks) ByID() map[string]CanonicalTrack {
	m := make(map[string]CanonicalTrack, len(p.Tracks))
	for _, t := range p.Tracks {
		if _, ok := m[t.ID]; !ok {
			m[t.ID] = t
		}
	}
	return m
}

// DuplicateCluster groups tracks of one playlist that share title, artist set and duration but not id.
type DuplicateCluster struct {
	Key    string           `json:"key"`
	Tracks []CanonicalTrack `json:"tracks"`
}

// DiffResult is the set relationship between two playlists.
//
// Intersection, OnlyLeft and OnlyRight partition the union of track ids and are sorted.
// LeftDuplicates and RightDuplicates list ids that occur more than once in the same playlist.
type DiffResult struct {
	Intersection            []string           `json:"intersection"`
	OnlyLeft                []string           `json:"only_left"`
	OnlyRight               []string           `json:"only_right"`
	LeftDuplicates          []string           `json:"left_duplicates"`
	RightDuplicates         []string           `json:"right_duplicates"`
	LeftPossibleDuplicates  []DuplicateCluster `json:"left_possible_duplicates"`
	RightPossibleDuplicates []DuplicateCluster `json:"right_possible_duplicates"`
}

// UnionSize is the number of distinct ids across both playlists.
func (d DiffResult) UnionSize() int {
	return len(d.Intersection) + len(d.OnlyLeft) + len(d.OnlyRight)
}

// Comparison bundles two loaded playlists and their diff.
type Comparison struct {
	RunID string         `json:"run_id"`
	Left  PlaylistTracks `json:"left"`
	Right PlaylistTracks `json:"right"`
	Diff  DiffResult     `json:"diff"`
}
