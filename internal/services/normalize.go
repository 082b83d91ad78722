package services

import (
	"github.com/desertthunder/pldiff/internal/models"
	"github.com/desertthunder/pldiff/internal/shared"
	"github.com/samber/lo"
)

const openTrackURL = "https://open.spotify.com/track/"

// Normalize maps raw playlist entries to canonical tracks, preserving order.
//
// Index is the entry position. Missing optional fields become zero values;
// an entry without a track, id or uri fails the whole batch.
func Normalize(entries []RawEntry) ([]models.CanonicalTrack, error) {
	tracks := make([]models.CanonicalTrack, 0, len(entries))

	for i, entry := range entries {
		t := entry.Track
		switch {
		case t == nil:
			return nil, &shared.ShapeError{Index: i, Field: "track"}
		case t.ID == "":
			return nil, &shared.ShapeError{Index: i, Field: "id"}
		case t.URI == "":
			return nil, &shared.ShapeError{Index: i, Field: "uri"}
		}

		externalURL := t.ExternalURLs.Spotify
		if externalURL == "" {
			externalURL = openTrackURL + t.ID
		}

		track := models.CanonicalTrack{
			Index:       i,
			ID:          t.ID,
			Title:       t.Name,
			URI:         t.URI,
			DurationMS:  t.DurationMS,
			ExternalURL: externalURL,
			Artists:     artistRefs(t.Artists),
		}

		if t.Album != nil {
			track.Album = models.AlbumRef{
				ID:          t.Album.ID,
				Title:       t.Album.Name,
				URI:         t.Album.URI,
				ExternalURL: t.Album.ExternalURLs.Spotify,
				Artists:     artistRefs(t.Album.Artists),
			}
		}

		tracks = append(tracks, track)
	}

	return tracks, nil
}

func artistRefs(artists []SpotifyArtist) []models.ArtistRef {
	return lo.Map(artists, func(a SpotifyArtist, _ int) models.ArtistRef {
		return models.ArtistRef{
			ID:          a.ID,
			Name:        a.Name,
			Type:        a.Type,
			URI:         a.URI,
			ExternalURL: a.ExternalURLs.Spotify,
		}
	})
}
