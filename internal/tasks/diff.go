package tasks

import (
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/pldiff/internal/models"
	"github.com/desertthunder/pldiff/internal/shared"
	"github.com/samber/lo"
)

// Diff computes the set relationship between two track lists.
//
// Identity is the exact track id. Intersection, OnlyLeft and OnlyRight partition the union
// of both id sets and are sorted, so the result does not depend on input order.
// Duplicate detection runs on each list independently.
func Diff(left, right []models.CanonicalTrack) models.DiffResult {
	leftIDs := trackIDs(left)
	rightIDs := trackIDs(right)

	leftSet := lo.Uniq(leftIDs)
	rightSet := lo.Uniq(rightIDs)

	inRight := lo.SliceToMap(rightSet, func(id string) (string, bool) { return id, true })
	intersection := lo.Filter(leftSet, func(id string, _ int) bool { return inRight[id] })
	onlyLeft, onlyRight := lo.Difference(leftSet, rightSet)

	return models.DiffResult{
		Intersection:            sorted(intersection),
		OnlyLeft:                sorted(onlyLeft),
		OnlyRight:               sorted(onlyRight),
		LeftDuplicates:          sorted(lo.FindDuplicates(leftIDs)),
		RightDuplicates:         sorted(lo.FindDuplicates(rightIDs)),
		LeftPossibleDuplicates:  PossibleDuplicates(left),
		RightPossibleDuplicates: PossibleDuplicates(right),
	}
}

// PossibleDuplicates groups tracks sharing normalized title, artist set and duration under different ids.
//
// Clusters are ordered by key; tracks within a cluster keep the first occurrence of each id in list order.
// Tracks without a title are never grouped.
func PossibleDuplicates(tracks []models.CanonicalTrack) []models.DuplicateCluster {
	titled := lo.Filter(tracks, func(t models.CanonicalTrack, _ int) bool {
		return shared.NormalizeTitle(t.Title) != ""
	})
	groups := lo.GroupBy(titled, SimilarityKey)

	keys := lo.Keys(groups)
	slices.Sort(keys)

	clusters := []models.DuplicateCluster{}
	for _, key := range keys {
		members := lo.UniqBy(groups[key], func(t models.CanonicalTrack) string { return t.ID })
		if len(members) < 2 {
			continue
		}
		clusters = append(clusters, models.DuplicateCluster{Key: key, Tracks: members})
	}
	return clusters
}

// SimilarityKey is the composite key used for possible duplicate detection:
// normalized title, sorted artist ids and duration in milliseconds.
func SimilarityKey(t models.CanonicalTrack) string {
	return strings.Join([]string{
		shared.NormalizeTitle(t.Title),
		strings.Join(t.ArtistIDs(), ","),
		strconv.Itoa(t.DurationMS),
	}, "|")
}

func trackIDs(tracks []models.CanonicalTrack) []string {
	return lo.Map(tracks, func(t models.CanonicalTrack, _ int) string { return t.ID })
}

func sorted(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	slices.Sort(out)
	return out
}
