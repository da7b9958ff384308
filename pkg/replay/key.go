package replay

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"
)

// Placeholder is the host carried by every canonical URL.
const Placeholder = "harplay"

const canonicalScheme = "http"

// Header is a single name/value pair. Duplicate names are legal and kept in
// order.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Request is an already-parsed request, either recorded or live.
type Request struct {
	Method  string
	URL     string
	Headers []Header
}

// RequestKey is the canonical identity of a request.
//
// Only CanonicalURL takes part in identity; Method and Headers are kept for
// display.
type RequestKey struct {
	Method       string
	CanonicalURL *url.URL
	// OriginalURL is the URL as it was received, before canonicalization.
	OriginalURL string
	// Headers are sorted by name.
	Headers []Header
}

// ID returns the string the key is stored and looked up under.
func (k *RequestKey) ID() string {
	return k.CanonicalURL.String()
}

func (k *RequestKey) String() string {
	return k.Method + " " + k.OriginalURL
}

// Canonicalizer reduces requests to RequestKeys. The zero value is ready to
// use and discards diagnostics.
type Canonicalizer struct {
	// Logger receives a warning for every header dropped because its value
	// is not text.
	Logger *slog.Logger
}

// Canonicalize is Canonicalizer{}.Canonicalize.
func Canonicalize(method, rawURL string, headers []Header) (*RequestKey, error) {
	return Canonicalizer{}.Canonicalize(method, rawURL, headers)
}

// Canonicalize parses rawURL, checks it is an http(s) URL and rewrites its
// scheme and authority so that requests recorded against one host match
// requests replayed against another.
func (c Canonicalizer) Canonicalize(method, rawURL string, headers []Header) (*RequestKey, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &NormalizationError{Kind: ErrParsingURL, Method: method, URL: rawURL, Err: err}
	}
	if !u.IsAbs() {
		return nil, &NormalizationError{Kind: ErrParsingURL, Method: method, URL: rawURL}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &NormalizationError{Kind: ErrNonHTTPScheme, Method: method, URL: rawURL}
	}
	if u.Opaque != "" {
		return nil, &NormalizationError{Kind: ErrParsingURL, Method: method, URL: rawURL}
	}

	canonical := *u
	canonical.User = nil
	canonical.Host = Placeholder
	canonical.Scheme = canonicalScheme
	if canonical.Path == "" && canonical.RawPath == "" {
		canonical.Path = "/"
	}
	if canonical.Hostname() != Placeholder || canonical.Port() != "" {
		return nil, &NormalizationError{Kind: ErrReplacingHost, Method: method, URL: rawURL}
	}
	if canonical.Scheme != canonicalScheme {
		return nil, &NormalizationError{Kind: ErrReplacingScheme, Method: method, URL: rawURL}
	}

	return &RequestKey{
		Method:       method,
		CanonicalURL: &canonical,
		OriginalURL:  rawURL,
		Headers:      c.textHeaders(method, rawURL, headers),
	}, nil
}

// textHeaders drops headers whose value is not text and sorts the rest by
// name.
func (c Canonicalizer) textHeaders(method, rawURL string, headers []Header) []Header {
	out := make([]Header, 0, len(headers))
	for _, h := range headers {
		if !isText(h.Value) {
			if c.Logger != nil {
				c.Logger.Warn("ignoring header with non-text value",
					"header", h.Name, "method", method, "url", rawURL)
			}
			continue
		}
		out = append(out, h)
	}
	slices.SortStableFunc(out, func(a, b Header) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// isText reports whether v is valid UTF-8 without control characters other
// than horizontal tab.
func isText(v string) bool {
	if !utf8.ValidString(v) {
		return false
	}
	for _, r := range v {
		if (r < 0x20 && r != '\t') || r == 0x7f {
			return false
		}
	}
	return true
}

// FromHTTPRequest converts a request received by an HTTP server. Servers
// usually deliver only the path and query, so a missing scheme defaults to
// http and a missing authority to Placeholder.
func FromHTTPRequest(r *http.Request) Request {
	var u url.URL
	if r.URL != nil {
		u = *r.URL
	}
	if u.Scheme == "" {
		u.Scheme = canonicalScheme
	}
	if u.Host == "" {
		u.Host = Placeholder
	}
	if u.Path == "" && u.RawPath == "" && u.Opaque == "" {
		u.Path = "/"
	}

	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	slices.Sort(names)

	var headers []Header
	for _, name := range names {
		for _, v := range r.Header[name] {
			headers = append(headers, Header{Name: name, Value: v})
		}
	}

	return Request{Method: r.Method, URL: u.String(), Headers: headers}
}
