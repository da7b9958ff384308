// Package replay matches live HTTP requests against recorded interactions
// and selects which recorded response to serve next.
//
// # Canonical requests
//
// Recorded and live requests are reduced to a RequestKey whose identity is
// the canonical URL: the scheme is rewritten to http and the authority to a
// fixed placeholder, while path, query and fragment are kept verbatim. A
// capture taken against https://api.example.com:8443 therefore matches a
// replay served on http://127.0.0.1:3030.
//
// # Selection
//
// Every key owns an ordered list of responses and a cursor. A Behaviour
// decides which index to serve next given the cursor and the list length:
//
//   - always-first, always-last: static fixtures
//   - random: uniform choice on every call
//   - sequential-wrapping: cycle through the recording
//   - sequential-clamping: walk the recording, then repeat the last response
//   - sequential-once: walk the recording once, then fail
//
// # Usage
//
//	store, skipped := replay.Build(records, replay.SequentialWrapping)
//	for _, s := range skipped {
//	    logger.Error("entry dropped", "method", s.Method, "url", s.URL, "error", s.Err)
//	}
//
//	resp, err := store.RespondTo(replay.FromHTTPRequest(r))
//	switch {
//	case errors.Is(err, replay.ErrRequestNotFound):
//	    // nothing recorded for this URL
//	case errors.Is(err, replay.ErrResponseNotFound):
//	    // recording exhausted
//	}
//
// Store is safe for concurrent use. Cursor updates for a single key are
// serialized; different keys proceed in parallel.
package replay
