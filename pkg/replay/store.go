package replay

import (
	"bytes"
	"log/slog"
	"slices"
	"sync"
)

// RecordedResponse is a captured response. A nil Body means no body was
// recorded.
type RecordedResponse struct {
	StatusCode int      `json:"status"`
	Headers    []Header `json:"headers,omitempty"`
	Body       []byte   `json:"body,omitempty"`
}

// Clone returns a deep copy of r.
func (r RecordedResponse) Clone() RecordedResponse {
	return RecordedResponse{
		StatusCode: r.StatusCode,
		Headers:    slices.Clone(r.Headers),
		Body:       bytes.Clone(r.Body),
	}
}

// Record is one recorded interaction.
type Record struct {
	Request  Request
	Response RecordedResponse
}

// group holds the responses recorded for one canonical URL.
type group struct {
	// key is the first request recorded under this URL.
	key       *RequestKey
	responses []RecordedResponse
	behaviour Behaviour

	mu sync.Mutex
	// cursor is the index served last, -1 before the first response.
	cursor int
}

// Store maps canonical URLs to their recorded responses. The key set and
// the response lists are fixed by Build; only the per-key cursors change.
type Store struct {
	groups    map[string]*group
	order     []*group
	behaviour Behaviour
	responses int

	canon  Canonicalizer
	rng    Source
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSource sets the entropy used by the Random behaviour. The source is
// shared by every key and is guarded by its own lock.
func WithSource(src Source) Option {
	return func(s *Store) {
		if src != nil {
			s.rng = &lockedSource{src: src}
		}
	}
}

// WithLogger sets the logger used for build and header diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type lockedSource struct {
	mu  sync.Mutex
	src Source
}

func (l *lockedSource) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

// Build groups records by canonical URL, keeping the order in which they were
// supplied, and applies behaviour to every key. Records whose request cannot
// be canonicalized are skipped and returned as RecordErrors; the caller
// decides whether to log and continue.
func Build(records []Record, behaviour Behaviour, opts ...Option) (*Store, []*RecordError) {
	s := &Store{
		groups:    make(map[string]*group, len(records)),
		behaviour: behaviour,
		rng:       DefaultSource,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.canon = Canonicalizer{Logger: s.logger}

	var skipped []*RecordError
	for i, rec := range records {
		key, err := s.canon.Canonicalize(rec.Request.Method, rec.Request.URL, rec.Request.Headers)
		if err != nil {
			skipped = append(skipped, &RecordError{
				Index:  i,
				Method: rec.Request.Method,
				URL:    rec.Request.URL,
				Err:    err,
			})
			continue
		}

		id := key.ID()
		g, ok := s.groups[id]
		if !ok {
			g = &group{
				key:       key,
				responses: make([]RecordedResponse, 0, 1),
				behaviour: behaviour,
				cursor:    -1,
			}
			s.groups[id] = g
			s.order = append(s.order, g)
		}
		g.responses = append(g.responses, rec.Response.Clone())
		s.responses++
		s.logger.Debug("adding recorded response",
			"method", key.Method, "url", key.OriginalURL, "key", id, "index", len(g.responses)-1)
	}

	return s, skipped
}

// Behaviour returns the selection behaviour applied to every key.
func (s *Store) Behaviour() Behaviour {
	return s.behaviour
}

// Len returns the number of distinct keys.
func (s *Store) Len() int {
	return len(s.groups)
}

// ResponseCount returns the total number of stored responses.
func (s *Store) ResponseCount() int {
	return s.responses
}

// lookup finds the group for key. The map is never written after Build, so
// no lock is needed.
func (s *Store) lookup(key *RequestKey) (*group, bool) {
	g, ok := s.groups[key.ID()]
	return g, ok
}

// KeySummary describes one stored key.
type KeySummary struct {
	Method       string `json:"method"`
	CanonicalURL string `json:"canonicalUrl"`
	OriginalURL  string `json:"originalUrl"`
	Responses    int    `json:"responses"`
	// Cursor is the index served last, -1 if none.
	Cursor    int    `json:"cursor"`
	Behaviour string `json:"behaviour"`
}

// Keys lists the stored keys in the order they were first recorded.
func (s *Store) Keys() []KeySummary {
	out := make([]KeySummary, 0, len(s.order))
	for _, g := range s.order {
		g.mu.Lock()
		cursor := g.cursor
		g.mu.Unlock()
		out = append(out, KeySummary{
			Method:       g.key.Method,
			CanonicalURL: g.key.ID(),
			OriginalURL:  g.key.OriginalURL,
			Responses:    len(g.responses),
			Cursor:       cursor,
			Behaviour:    g.behaviour.String(),
		})
	}
	return out
}
