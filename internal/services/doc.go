// Package services talks to the Spotify Web API: it acquires client-credentials tokens, keeps them fresh and pages through playlist tracks.
//
// # Credential Lifecycle
//
// [TokenStore] owns the single current credential (an [oauth2.Token]) and the refresh schedule.
// [TokenStore.Set] replaces the credential atomically, cancels any pending refresh and arms one single-shot timer
// at the credential's lifetime. When it fires, the store calls the registered [RefreshFunc].
//
// [Authenticator] performs the client-credentials exchange through [clientcredentials.Config] and classifies the
// outcome into a [shared.AuthError]:
//   - 200 with access_token, token_type and expires_in : success, handed to [TokenStore.Set]
//   - 200 missing any of them : [shared.ErrMalformedResponse]
//   - 400 : [shared.ErrInvalidCredentials] with error_description, error or "Bad Request"
//   - anything else : [shared.ErrUnexpectedStatus]
//
// The authenticator registers itself as the store's refresh routine, so a credential stays fresh for as long
// as the process runs. A new [Authenticator.Acquire] with different credentials supersedes the old schedule.
//
// # Playlist Paging
//
// [PlaylistFetcher.FetchAll] validates the playlist id, market and credential before any request, then walks
// the playlist tracks endpoint by offset until the reported total is reached. Any failure aborts the whole fetch;
// partial playlists are never returned. Requests are paced with a [rate.Limiter] when configured.
//
// # Normalization
//
// [Normalize] maps [RawEntry] values into [models.CanonicalTrack] records. Missing optional fields become zero
// values; a missing track id or uri fails the whole batch with a [shared.ShapeError].
package services
