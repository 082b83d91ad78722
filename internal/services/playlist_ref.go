package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/desertthunder/pldiff/internal/shared"
)

var (
	playlistIDPattern = regexp.MustCompile(`^[0-9a-zA-Z]{22}$`)
	marketPattern     = regexp.MustCompile(`^[A-Z]{2}$`)
	playlistPath      = regexp.MustCompile(`^/(?:intl-[a-zA-Z-]+/)?playlist/([^/]+)/?$`)
)

// ValidPlaylistID reports whether id is a 22 character base62 playlist identifier.
func ValidPlaylistID(id string) bool {
	return playlistIDPattern.MatchString(id)
}

// ValidMarket reports whether market is empty or an ISO 3166-1 alpha-2 code.
func ValidMarket(market string) bool {
	return market == "" || marketPattern.MatchString(market)
}

// ParsePlaylistRef extracts the playlist id from a bare id, a spotify:playlist: URI
// or an open.spotify.com playlist link.
func ParsePlaylistRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: playlist", shared.ErrMissingArgument)
	}

	id := ref
	switch {
	case strings.HasPrefix(ref, "spotify:playlist:"):
		id = strings.TrimPrefix(ref, "spotify:playlist:")
	case strings.Contains(ref, "open.spotify.com"):
		raw := ref
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host != "open.spotify.com" {
			return "", fmt.Errorf("%w: %q", shared.ErrInvalidPlaylistID, ref)
		}
		m := playlistPath.FindStringSubmatch(u.Path)
		if m == nil {
			return "", fmt.Errorf("%w: %q", shared.ErrInvalidPlaylistID, ref)
		}
		id = m[1]
	}

	if !ValidPlaylistID(id) {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidPlaylistID, ref)
	}
	return id, nil
}
