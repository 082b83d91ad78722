// Package tasks compares Spotify playlists with real-time progress reporting.
//
// # Core Operations
//
//  1. [PlaylistEngine.Load] : fetch and normalize one playlist
//     - Pages through the playlist with a [services.TrackSource]
//     - Normalizes every entry into a [models.CanonicalTrack]
//
//  2. [PlaylistEngine.Compare] : diff two playlists
//     - Loads both playlists concurrently; the first failure aborts the run
//     - Runs [Diff] over the complete lists only
//
// # Diffing
//
// [Diff] is pure. Track identity is the exact catalog id:
//   - Intersection, OnlyLeft and OnlyRight partition the union of ids
//   - Duplicates are ids repeated inside one list
//   - Possible duplicates share normalized title, artist set and duration under different ids ([SimilarityKey])
//
// # Progress Reporting
//
// Compare sends [ProgressUpdate] values on an optional channel. Updates use select with default, so a slow or
// absent reader never blocks a comparison. Every update carries the run id also attached to the engine's logs.
package tasks
