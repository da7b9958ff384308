package har

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/getmockd/harplay/pkg/filter"
	"github.com/getmockd/harplay/pkg/replay"
)

// staticExtensions are file extensions treated as static assets.
var staticExtensions = map[string]bool{
	".js":    true,
	".css":   true,
	".png":   true,
	".jpg":   true,
	".jpeg":  true,
	".gif":   true,
	".svg":   true,
	".ico":   true,
	".woff":  true,
	".woff2": true,
	".ttf":   true,
	".eot":   true,
	".map":   true,
}

var staticMimePrefixes = []string{
	"text/javascript",
	"application/javascript",
	"text/css",
	"image/",
	"font/",
	"application/font",
}

// Options controls which entries Records keeps.
type Options struct {
	// ExcludeStatic drops scripts, stylesheets, images and fonts.
	ExcludeStatic bool

	// Filter, if set, must match for an entry to be kept.
	Filter filter.Predicate

	// Logger receives one debug line per excluded entry and one error line
	// per entry that cannot be converted.
	Logger *slog.Logger
}

// Stats counts what Records did with the entries it was given.
type Stats struct {
	Entries  int `json:"entries"`
	Kept     int `json:"kept"`
	Static   int `json:"static"`
	Filtered int `json:"filtered"`
	Invalid  int `json:"invalid"`
}

// Record converts the entry to a replay record. Response bodies recorded
// with base64 encoding are decoded; an entry without response text has a
// nil body.
func (e *Entry) Record() (replay.Record, error) {
	var body []byte
	if text := e.Response.Content.Text; text != "" {
		if strings.EqualFold(e.Response.Content.Encoding, "base64") {
			decoded, err := base64.StdEncoding.DecodeString(text)
			if err != nil {
				return replay.Record{}, fmt.Errorf("decoding base64 response body: %w", err)
			}
			body = decoded
		} else {
			body = []byte(text)
		}
	}

	return replay.Record{
		Request: replay.Request{
			Method:  e.Request.Method,
			URL:     e.Request.URL,
			Headers: convertHeaders(e.Request.Headers),
		},
		Response: replay.RecordedResponse{
			StatusCode: e.Response.Status,
			Headers:    convertHeaders(e.Response.Headers),
			Body:       body,
		},
	}, nil
}

// Records converts entries in order, dropping static assets (if requested),
// entries rejected by the filter and entries that cannot be converted.
func Records(entries []Entry, opts Options) ([]replay.Record, Stats) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	stats := Stats{Entries: len(entries)}
	records := make([]replay.Record, 0, len(entries))
	for i := range entries {
		entry := &entries[i]

		if opts.ExcludeStatic && isStaticAsset(entry.Request.URL, entry.Response.Content.MimeType) {
			logger.Debug("request excluded as static asset", "method", entry.Request.Method, "url", entry.Request.URL)
			stats.Static++
			continue
		}

		rec, err := entry.Record()
		if err != nil {
			logger.Error("entry dropped", "method", entry.Request.Method, "url", entry.Request.URL, "error", err)
			stats.Invalid++
			continue
		}

		if opts.Filter != nil && !opts.Filter.Match(rec) {
			logger.Debug("request excluded by filter", "method", entry.Request.Method, "url", entry.Request.URL)
			stats.Filtered++
			continue
		}

		records = append(records, rec)
	}
	stats.Kept = len(records)

	return records, stats
}

// isStaticAsset checks if a request is for a static asset.
func isStaticAsset(requestURL, mimeType string) bool {
	if parsed, err := url.Parse(requestURL); err == nil {
		if staticExtensions[strings.ToLower(filepath.Ext(parsed.Path))] {
			return true
		}
	}

	mimeType = strings.ToLower(mimeType)
	for _, prefix := range staticMimePrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}

func convertHeaders(in []Header) []replay.Header {
	if len(in) == 0 {
		return nil
	}
	out := make([]replay.Header, len(in))
	for i, h := range in {
		out[i] = replay.Header{Name: h.Name, Value: h.Value}
	}
	return out
}
