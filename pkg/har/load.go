package har

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultVersion is assumed when log.version is absent.
const DefaultVersion = "1.1"

// Parse errors.
var (
	ErrMissingLog     = errors.New("missing log object")
	ErrMissingCreator = errors.New("missing log.creator")
)

// ParseError is returned when an archive cannot be read or is not a HAR
// document.
type ParseError struct {
	// Path is the file being read, empty when parsing from memory.
	Path    string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	msg := "har: " + e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("har %s: %s", e.Path, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Parse decodes a HAR document from data.
func Parse(data []byte) (*HAR, error) {
	var doc HAR
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Message: "invalid JSON", Cause: err}
	}
	return validate(&doc)
}

// Decode reads a HAR document from r.
func Decode(r io.Reader) (*HAR, error) {
	var doc HAR
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &ParseError{Message: "invalid JSON", Cause: err}
	}
	return validate(&doc)
}

// Load reads the HAR file at path.
func Load(path string) (*HAR, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Message: "failed to open file", Cause: err}
	}
	defer func() { _ = f.Close() }()

	doc, err := Decode(f)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return doc, nil
}

func validate(doc *HAR) (*HAR, error) {
	if doc.Log == nil {
		return nil, &ParseError{Message: "not a HAR document", Cause: ErrMissingLog}
	}
	if doc.Log.Creator == nil {
		return nil, &ParseError{Message: "not a HAR document", Cause: ErrMissingCreator}
	}
	if doc.Log.Version == "" {
		doc.Log.Version = DefaultVersion
	}
	return doc, nil
}
