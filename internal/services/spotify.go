// Spotify Web API playlist paging
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/get-playlists-tracks
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pldiff/internal/shared"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	DefaultPageSize = 50
	MaxPageSize     = 100

	// DefaultFields limits the page payload to what [Normalize] reads.
	DefaultFields = "items(track(artists,external_urls,href,id,name,uri,duration_ms,album(href,id,images,name,uri,artists,external_urls))),next,offset,total"
)

// ExternalURLs holds the public links of a Spotify object.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	URI          string          `json:"uri"`
	Href         string          `json:"href"`
	ExternalURLs ExternalURLs    `json:"external_urls"`
	Artists      []SpotifyArtist `json:"artists"`
	Images       []SpotifyImage  `json:"images"`
}

// SpotifyTrack represents a Spotify track as embedded in a playlist entry.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	URI          string          `json:"uri"`
	Href         string          `json:"href"`
	DurationMS   int             `json:"duration_ms"`
	ExternalURLs ExternalURLs    `json:"external_urls"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        *SpotifyAlbum   `json:"album"`
}

// RawEntry wraps one track of a playlist page. Track is nil for removed or unavailable entries.
type RawEntry struct {
	AddedAt string        `json:"added_at,omitempty"`
	Track   *SpotifyTrack `json:"track"`
}

// RawPage is one page of the playlist tracks endpoint. Total is authoritative for paging.
type RawPage struct {
	Items  []RawEntry `json:"items"`
	Offset int        `json:"offset"`
	Total  int        `json:"total"`
	Next   *string    `json:"next"`
}

// FetcherOptions configures a [PlaylistFetcher]. Zero values select the defaults.
type FetcherOptions struct {
	BaseURL           string
	PageSize          int
	Market            string
	Fields            string
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
	Logger            *log.Logger
}

// PlaylistFetcher pages through the tracks of a playlist with the credential held by a [CredentialSource].
//
// It keeps no per-fetch state, so concurrent FetchAll calls are safe.
type PlaylistFetcher struct {
	baseURL    string
	pageSize   int
	market     string
	fields     string
	tokens     CredentialSource
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewPlaylistFetcher creates a fetcher reading credentials from tokens.
func NewPlaylistFetcher(tokens CredentialSource, opts FetcherOptions) *PlaylistFetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PageSize > MaxPageSize {
		opts.PageSize = MaxPageSize
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &PlaylistFetcher{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		pageSize:   opts.PageSize,
		market:     opts.Market,
		fields:     opts.Fields,
		tokens:     tokens,
		httpClient: opts.HTTPClient,
		limiter:    limiter,
		logger:     shared.WithLogger(opts.Logger, "component", "fetcher"),
	}
}

// PageSize returns the limit sent with every page request.
func (f *PlaylistFetcher) PageSize() int {
	return f.pageSize
}

// validate rejects a fetch before any network call.
func (f *PlaylistFetcher) validate(playlistID string) error {
	if !ValidPlaylistID(playlistID) {
		return fmt.Errorf("%w: %q", shared.ErrInvalidPlaylistID, playlistID)
	}
	if !ValidMarket(f.market) {
		return fmt.Errorf("%w: %q", shared.ErrInvalidMarket, f.market)
	}
	if _, ok := f.tokens.Current(); !ok {
		return shared.ErrNoCredential
	}
	return nil
}

// FetchAll retrieves every entry of the playlist in playlist order.
//
// The loop advances the offset by the number of items received and stops once it reaches the reported total.
// A zero total, or an empty page before the total is reached, fails with [shared.ErrEmptyOrInaccessible].
// Any request failure fails the whole fetch with [shared.ErrTransport]; no partial result is returned.
func (f *PlaylistFetcher) FetchAll(ctx context.Context, playlistID string) ([]RawEntry, error) {
	if err := f.validate(playlistID); err != nil {
		return nil, err
	}

	var entries []RawEntry
	offset := 0
	total := 1

	for offset < total {
		page, err := f.fetchPage(ctx, playlistID, offset)
		if err != nil {
			return nil, err
		}

		if page.Total == 0 {
			return nil, fmt.Errorf("%w: playlist %s reports no tracks", shared.ErrEmptyOrInaccessible, playlistID)
		}
		if len(page.Items) == 0 {
			return nil, fmt.Errorf("%w: playlist %s returned an empty page at offset %d of %d",
				shared.ErrEmptyOrInaccessible, playlistID, offset, page.Total)
		}

		entries = append(entries, page.Items...)
		offset += len(page.Items)
		total = page.Total

		f.logger.Debug("fetched page", "playlist", playlistID, "offset", offset, "total", total)
	}

	f.logger.Info("fetched playlist", "playlist", playlistID, "tracks", len(entries))
	return entries, nil
}

// FetchPage retrieves a single page starting at offset.
func (f *PlaylistFetcher) FetchPage(ctx context.Context, playlistID string, offset int) (*RawPage, error) {
	if err := f.validate(playlistID); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", shared.ErrInvalidArgument, offset)
	}
	return f.fetchPage(ctx, playlistID, offset)
}

func (f *PlaylistFetcher) pageURL(playlistID string, offset int) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(f.pageSize))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if f.market != "" {
		q.Set("market", f.market)
	}
	if f.fields != "" {
		q.Set("fields", f.fields)
	}
	return fmt.Sprintf("%s/playlists/%s/tracks?%s", f.baseURL, url.PathEscape(playlistID), q.Encode())
}

// fetchPage performs one authenticated page request with the credential in effect right now.
func (f *PlaylistFetcher) fetchPage(ctx context.Context, playlistID string, offset int) (*RawPage, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
		}
	}

	token, ok := f.tokens.Current()
	if !ok {
		return nil, shared.ErrNoCredential
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.pageURL(playlistID, offset), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", token.TokenType+" "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: spotify API error: status %d", shared.ErrTransport, resp.StatusCode)
	}

	var page RawPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrTransport, err)
	}

	return &page, nil
}
