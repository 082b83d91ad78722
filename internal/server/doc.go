// Package server provides HTTP routing, middleware, and the JSON API served by `pldiff serve`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Standard] returns the default stack built on chi's middleware package plus [RequestLogger].
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /health") internally.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # API
//
// [API] implements [Handler]:
//   - GET /health : liveness and whether a credential is held
//   - GET /playlists/{id}/tracks : canonical tracks of one playlist
//   - GET /diff?left=&right= : comparison of two playlists
//
// Playlist parameters accept ids, open.spotify.com links and spotify: URIs.
// Errors are returned as {"error": "..."} with a status chosen by [StatusFor].
package server
