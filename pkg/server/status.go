package server

import (
	"errors"
	"net/http"

	"github.com/getmockd/harplay/pkg/replay"
)

// Kind classifies a replay failure.
type Kind string

// Failure kinds. They double as the "error" code in JSON error bodies and
// as the outcome label in metrics and the request log.
const (
	KindInvalidURL       Kind = "invalid_url"
	KindRequestNotFound  Kind = "request_not_found"
	KindResponseNotFound Kind = "response_not_found"
	KindInternal         Kind = "internal"
)

// OutcomeServed is the outcome recorded for a successful replay.
const OutcomeServed = "served"

// ErrInternal wraps failures that are not the responder's typed errors:
// panics and unreplayable recorded responses.
var ErrInternal = errors.New("internal replay failure")

// StatusMap maps failure kinds to the HTTP status written to the client.
type StatusMap map[Kind]int

// DefaultStatusMap returns the per-kind defaults.
func DefaultStatusMap() StatusMap {
	return StatusMap{
		KindInvalidURL:       http.StatusBadRequest,
		KindRequestNotFound:  http.StatusNotFound,
		KindResponseNotFound: http.StatusGone,
		KindInternal:         http.StatusInternalServerError,
	}
}

// Collapse maps every failure kind to code.
func Collapse(code int) StatusMap {
	return StatusMap{
		KindInvalidURL:       code,
		KindRequestNotFound:  code,
		KindResponseNotFound: code,
		KindInternal:         code,
	}
}

// Status returns the status for kind, falling back to the default mapping.
func (m StatusMap) Status(kind Kind) int {
	if code, ok := m[kind]; ok && code >= 100 && code <= 999 {
		return code
	}
	if code, ok := DefaultStatusMap()[kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// Classify returns the failure kind of an error returned by a Responder.
func Classify(err error) Kind {
	var nerr *replay.NormalizationError
	switch {
	case errors.Is(err, replay.ErrRequestNotFound):
		return KindRequestNotFound
	case errors.Is(err, replay.ErrResponseNotFound):
		return KindResponseNotFound
	case errors.As(err, &nerr):
		return KindInvalidURL
	default:
		return KindInternal
	}
}
