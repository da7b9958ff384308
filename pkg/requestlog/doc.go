// Package requestlog keeps a bounded history of replayed requests for
// inspection through the admin API.
//
// It is distinct from operational logging (log/slog): entries record what
// a mock client asked for and which outcome it got, so a test author can see
// why a request missed the recording.
//
//	store := requestlog.NewMemoryStore(1000)
//	store.Log(&requestlog.Entry{Method: "GET", Path: "/api/items", Outcome: "served"})
//	recent := store.List(50)
package requestlog
