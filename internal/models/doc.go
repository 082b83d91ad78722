// Package models defines the canonical, service-independent records that pldiff compares.
//
// Raw Spotify payloads are decoded into wire types in the services package and normalized into:
//   - [CanonicalTrack] : one playlist entry with flattened album and artist references
//   - [PlaylistTracks] : the ordered canonical tracks of a single playlist fetch
//
// The diff engine (tasks package) produces:
//   - [DiffResult] : intersection, one-sided differences and duplicate reports
//   - [DuplicateCluster] : tracks in one playlist that look like re-uploads of each other
//   - [Comparison] : both playlists plus their [DiffResult], ready for rendering
//
// All values are derived and read-only; a new fetch produces new values.
package models
