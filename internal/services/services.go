package services

import (
	"context"

	"golang.org/x/oauth2"
)

// CredentialSource exposes the credential currently in effect.
//
// [TokenStore] implements it; every request reads it at request time.
type CredentialSource interface {
	Current() (*oauth2.Token, bool)
}

// TrackSource retrieves every raw entry of a playlist.
//
// [PlaylistFetcher] implements it for the Spotify Web API.
type TrackSource interface {
	FetchAll(ctx context.Context, playlistID string) ([]RawEntry, error)
}

// RefreshFunc is invoked by a [TokenStore] when the current credential expires.
type RefreshFunc func(ctx context.Context) error
