// Package remote mirrors books to an HTTP sync service.
//
// # Overview
//
// Client implements objectstore.Store on top of four JSON endpoints:
//
//	GET    /api/books        → {"books": [...]}
//	PUT    /api/books        ← {"books": [...]}   replace the collection
//	PUT    /api/books/{id}   ← book               upsert one book
//	DELETE /api/books/{id}                        remove one book
//
// The service is a best-effort mirror. The application wraps it as the
// secondary of an objectstore.Mirror, so its failures are logged and never
// reach the editing session, and nothing is ever read back from it during a
// session.
//
// # Rate Limiting
//
// Every request waits on a token bucket (golang.org/x/time/rate) sized by
// the remote.requests_per_second setting. Bursts of autosaves therefore
// queue up instead of hammering the service. Waiting honours the request
// context.
//
// # Errors
//
// Transport failures wrap objectstore.ErrUnavailable. Non-2xx responses
// return *StatusError, except a 404 from Delete, which is treated as
// already deleted.
package remote
