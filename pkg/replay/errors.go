package replay

import (
	"errors"
	"fmt"
)

// Normalization errors. A *NormalizationError unwraps to one of these.
var (
	ErrNonHTTPScheme   = errors.New("scheme is not http or https")
	ErrParsingURL      = errors.New("error parsing URL")
	ErrReplacingHost   = errors.New("error normalizing URL host")
	ErrReplacingScheme = errors.New("error normalizing URL scheme")
)

// Responder errors.
var (
	// ErrRequestNotFound means nothing was recorded for the canonical URL.
	ErrRequestNotFound = errors.New("request not found")
	// ErrResponseNotFound means the URL was recorded but the selection
	// behaviour yielded no response, e.g. an exhausted sequential-once key.
	ErrResponseNotFound = errors.New("response not found")
)

// NormalizationError is returned when a request cannot be reduced to a
// RequestKey.
type NormalizationError struct {
	// Kind is one of ErrNonHTTPScheme, ErrParsingURL, ErrReplacingHost or
	// ErrReplacingScheme.
	Kind   error
	Method string
	URL    string
	// Err is the underlying parser error, if any.
	Err error
}

func (e *NormalizationError) Error() string {
	msg := fmt.Sprintf("%s %q: %s", e.Method, e.URL, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NormalizationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// RecordError describes a recorded interaction that Build skipped.
type RecordError struct {
	// Index is the position of the record in the input sequence.
	Index  int
	Method string
	URL    string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (%s %s) skipped: %v", e.Index, e.Method, e.URL, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
