package tasks

import (
	"reflect"
	"slices"
	"testing"

	"github.com/desertthunder/pldiff/internal/models"
)

func track(id, title string, durationMS int, artistIDs ...string) models.CanonicalTrack {
	artists := make([]models.ArtistRef, 0, len(artistIDs))
	for _, a := range artistIDs {
		artists = append(artists, models.ArtistRef{ID: a, Name: "Name " + a})
	}
	return models.CanonicalTrack{ID: id, Title: title, DurationMS: durationMS, Artists: artists}
}

func ids(ids ...string) []models.CanonicalTrack {
	tracks := make([]models.CanonicalTrack, 0, len(ids))
	for i, id := range ids {
		t := track(id, "Song "+id, 1000, "artist-"+id)
		t.Index = i
		tracks = append(tracks, t)
	}
	return tracks
}

func TestDiff(t *testing.T) {
	t.Run("Overlapping Lists", func(t *testing.T) {
		got := Diff(ids("A", "B", "C"), ids("B", "C", "D"))

		if !reflect.DeepEqual(got.Intersection, []string{"B", "C"}) {
			t.Errorf("expected intersection [B C], got %v", got.Intersection)
		}
		if !reflect.DeepEqual(got.OnlyLeft, []string{"A"}) {
			t.Errorf("expected only left [A], got %v", got.OnlyLeft)
		}
		if !reflect.DeepEqual(got.OnlyRight, []string{"D"}) {
			t.Errorf("expected only right [D], got %v", got.OnlyRight)
		}
		if len(got.LeftDuplicates) != 0 || len(got.RightDuplicates) != 0 {
			t.Errorf("expected no duplicates, got %v / %v", got.LeftDuplicates, got.RightDuplicates)
		}
	})

	t.Run("Partition Law", func(t *testing.T) {
		tests := []struct {
			name        string
			left, right []models.CanonicalTrack
		}{
			{name: "Both Empty"},
			{name: "Left Empty", right: ids("a", "b")},
			{name: "Right Empty", left: ids("a", "b")},
			{name: "Disjoint", left: ids("a", "b"), right: ids("c", "d", "e")},
			{name: "Identical", left: ids("a", "b", "c"), right: ids("c", "b", "a")},
			{name: "With Repeats", left: ids("a", "a", "b", "c"), right: ids("c", "c", "d")},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got := Diff(tt.left, tt.right)

				union := map[string]bool{}
				for _, tr := range append(slices.Clone(tt.left), tt.right...) {
					union[tr.ID] = true
				}

				if got.UnionSize() != len(union) {
					t.Errorf("expected %d ids across the partition, got %d", len(union), got.UnionSize())
				}

				seen := map[string]int{}
				for _, set := range [][]string{got.Intersection, got.OnlyLeft, got.OnlyRight} {
					for _, id := range set {
						seen[id]++
					}
				}
				for id := range union {
					if seen[id] != 1 {
						t.Errorf("id %s appears in %d sets", id, seen[id])
					}
				}
			})
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		left := ids("x", "y", "y", "z")
		right := ids("z", "w")

		first := Diff(left, right)
		second := Diff(left, right)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("expected identical results, got %+v and %+v", first, second)
		}
	})

	t.Run("Order Independent", func(t *testing.T) {
		a := Diff(ids("c", "a", "b"), ids("d", "b"))
		b := Diff(ids("b", "c", "a"), ids("b", "d"))

		if !reflect.DeepEqual(a.Intersection, b.Intersection) ||
			!reflect.DeepEqual(a.OnlyLeft, b.OnlyLeft) ||
			!reflect.DeepEqual(a.OnlyRight, b.OnlyRight) {
			t.Errorf("expected equal sets, got %+v and %+v", a, b)
		}
	})

	t.Run("True Duplicates", func(t *testing.T) {
		got := Diff(ids("b", "a", "b", "c", "a"), ids("d", "d"))

		if !reflect.DeepEqual(got.LeftDuplicates, []string{"a", "b"}) {
			t.Errorf("expected left duplicates [a b], got %v", got.LeftDuplicates)
		}
		if !reflect.DeepEqual(got.RightDuplicates, []string{"d"}) {
			t.Errorf("expected right duplicates [d], got %v", got.RightDuplicates)
		}
		if !reflect.DeepEqual(got.OnlyLeft, []string{"a", "b", "c"}) {
			t.Errorf("expected repeats to count once, got %v", got.OnlyLeft)
		}
	})

	t.Run("Empty Results Are Not Nil", func(t *testing.T) {
		got := Diff(nil, nil)
		if got.Intersection == nil || got.OnlyLeft == nil || got.OnlyRight == nil {
			t.Error("expected empty slices")
		}
		if got.LeftPossibleDuplicates == nil || got.RightPossibleDuplicates == nil {
			t.Error("expected empty cluster lists")
		}
	})
}

func TestPossibleDuplicates(t *testing.T) {
	t.Run("Groups Re-uploads", func(t *testing.T) {
		tracks := []models.CanonicalTrack{
			track("id1", "Hello World", 200000, "a1", "a2"),
			track("id2", "Other", 100000, "a3"),
			track("id3", "  hello   WORLD ", 200000, "a2", "a1"),
			track("id1", "Hello World", 200000, "a1", "a2"),
			track("id4", "Hello World", 200001, "a1", "a2"),
		}

		clusters := PossibleDuplicates(tracks)
		if len(clusters) != 1 {
			t.Fatalf("expected 1 cluster, got %d: %+v", len(clusters), clusters)
		}

		got := make([]string, 0, len(clusters[0].Tracks))
		for _, tr := range clusters[0].Tracks {
			got = append(got, tr.ID)
		}
		if !reflect.DeepEqual(got, []string{"id1", "id3"}) {
			t.Errorf("expected [id1 id3] in first-seen order, got %v", got)
		}
		if clusters[0].Key != "hello world|a1,a2|200000" {
			t.Errorf("unexpected key %q", clusters[0].Key)
		}
	})

	t.Run("Same ID Is Not A Possible Duplicate", func(t *testing.T) {
		tracks := []models.CanonicalTrack{
			track("id1", "Song", 1000, "a"),
			track("id1", "Song", 1000, "a"),
		}
		if clusters := PossibleDuplicates(tracks); len(clusters) != 0 {
			t.Errorf("expected no clusters, got %+v", clusters)
		}
	})

	t.Run("Different Artists", func(t *testing.T) {
		tracks := []models.CanonicalTrack{
			track("id1", "Song", 1000, "a"),
			track("id2", "Song", 1000, "b"),
		}
		if clusters := PossibleDuplicates(tracks); len(clusters) != 0 {
			t.Errorf("expected no clusters, got %+v", clusters)
		}
	})

	t.Run("Untitled Tracks", func(t *testing.T) {
		tracks := []models.CanonicalTrack{
			track("id1", "", 0),
			track("id2", "", 0),
		}
		if clusters := PossibleDuplicates(tracks); len(clusters) != 0 {
			t.Errorf("expected untitled tracks to be skipped, got %+v", clusters)
		}
	})

	t.Run("Clusters Sorted By Key", func(t *testing.T) {
		tracks := []models.CanonicalTrack{
			track("z1", "Zebra", 1, "a"),
			track("b1", "Alpha", 1, "a"),
			track("z2", "Zebra", 1, "a"),
			track("b2", "Alpha", 1, "a"),
		}

		clusters := PossibleDuplicates(tracks)
		if len(clusters) != 2 {
			t.Fatalf("expected 2 clusters, got %d", len(clusters))
		}
		if clusters[0].Tracks[0].ID != "b1" || clusters[1].Tracks[0].ID != "z1" {
			t.Errorf("expected alpha cluster first, got %+v", clusters)
		}
	})
}
