// Package server provides HTTP routing, middleware, and the local JSON API over the lyrics library.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// Handlers from github.com/go-chi/chi/v5/middleware (request ids, panic recovery, timeouts) share the same shape and
// are installed directly.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally; routes use "METHOD /path/{param}" patterns.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Library API
//
// [API] is the [Handler] for the library. Requests and responses are JSON. Library errors are classified with
// [library.Outcome] and mapped to status codes:
//
//	validation     400
//	not_found      404
//	forbidden      403
//	already_exists 409
//	persistence    500
//
// The server binds to loopback by default; there is no authentication.
package server
