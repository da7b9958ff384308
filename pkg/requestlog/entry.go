package requestlog

import "time"

// Entry captures one replayed request and its outcome.
type Entry struct {
	// ID is assigned by the store when empty.
	ID string `json:"id"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`

	// RequestID is the transport-level request ID (X-Request-Id), if any.
	RequestID string `json:"requestId,omitempty"`

	Method      string `json:"method"`
	Path        string `json:"path"`
	QueryString string `json:"queryString,omitempty"`
	RemoteAddr  string `json:"remoteAddr"`

	// Status is the HTTP status written to the client.
	Status int `json:"status"`

	// Outcome is "served" or a failure kind.
	Outcome string `json:"outcome"`

	// Error contains the failure message, if the request failed.
	Error string `json:"error,omitempty"`

	DurationMs float64 `json:"durationMs"`
}
