package harplaytest

import (
	"net/http/httptest"
	"testing"

	"github.com/getmockd/harplay/pkg/har"
	"github.com/getmockd/harplay/pkg/replay"
	"github.com/getmockd/harplay/pkg/requestlog"
	"github.com/getmockd/harplay/pkg/server"
)

// Server is a replay server bound to a test.
type Server struct {
	httpSrv *httptest.Server
	store   *replay.Store
	log     *requestlog.MemoryStore
}

type settings struct {
	behaviour replay.Behaviour
	source    replay.Source
	statuses  server.StatusMap
	harOpts   har.Options
}

// Option configures a Server.
type Option func(*settings)

// WithBehaviour sets the selection behaviour. The default is
// replay.AlwaysFirst.
func WithBehaviour(b replay.Behaviour) Option {
	return func(s *settings) { s.behaviour = b }
}

// WithSource fixes the entropy used by replay.Random.
func WithSource(src replay.Source) Option {
	return func(s *settings) { s.source = src }
}

// WithStatuses overrides the failure status mapping.
func WithStatuses(m server.StatusMap) Option {
	return func(s *settings) { s.statuses = m }
}

// WithHAROptions sets the entry filters FromHAR applies.
func WithHAROptions(o har.Options) Option {
	return func(s *settings) { s.harOpts = o }
}

// New serves records for the duration of t. Records whose URL cannot be
// canonicalized fail the test.
func New(t testing.TB, records []replay.Record, opts ...Option) *Server {
	t.Helper()

	srv, skipped := start(t, records, apply(opts))
	for _, e := range skipped {
		t.Errorf("harplaytest: %v", e)
	}
	return srv
}

// FromHAR loads the HAR file at path and serves its entries. Entries that
// cannot be replayed, such as WebSocket upgrades, are logged and skipped.
func FromHAR(t testing.TB, path string, opts ...Option) *Server {
	t.Helper()

	s := apply(opts)
	doc, err := har.Load(path)
	if err != nil {
		t.Fatalf("harplaytest: %v", err)
	}
	records, stats := har.Records(doc.Log.Entries, s.harOpts)
	if stats.Invalid > 0 {
		t.Logf("harplaytest: %d invalid entries in %s skipped", stats.Invalid, path)
	}

	srv, skipped := start(t, records, s)
	for _, e := range skipped {
		t.Logf("harplaytest: %v", e)
	}
	return srv
}

func apply(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func start(t testing.TB, records []replay.Record, s settings) (*Server, []*replay.RecordError) {
	var storeOpts []replay.Option
	if s.source != nil {
		storeOpts = append(storeOpts, replay.WithSource(s.source))
	}
	store, skipped := replay.Build(records, s.behaviour, storeOpts...)

	log := requestlog.NewMemoryStore(requestlog.DefaultMaxEntries)
	handler := server.NewHandler(store, server.HandlerOptions{
		Statuses:   s.statuses,
		RequestLog: log,
	})

	srv := &Server{
		httpSrv: httptest.NewServer(handler),
		store:   store,
		log:     log,
	}
	t.Cleanup(srv.Close)
	return srv, skipped
}

// URL returns the base URL, e.g. "http://127.0.0.1:53211".
func (s *Server) URL() string {
	return s.httpSrv.URL
}

// Store returns the store being served.
func (s *Server) Store() *replay.Store {
	return s.store
}

// Requests returns the requests served so far, oldest first.
func (s *Server) Requests() []*requestlog.Entry {
	entries := s.log.List(0)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

// Reset clears the request log. Key cursors are not affected.
func (s *Server) Reset() {
	s.log.Clear()
}

// Close stops the server. It is called automatically at test cleanup.
func (s *Server) Close() {
	s.httpSrv.Close()
}
