package harplaytest

import (
	"strings"
	"testing"

	"github.com/getmockd/harplay/pkg/requestlog"
	"github.com/getmockd/harplay/pkg/server"
)

// Calls returns the logged requests with the given method and path.
// Method matching ignores case.
func (s *Server) Calls(method, path string) []*requestlog.Entry {
	var out []*requestlog.Entry
	for _, e := range s.Requests() {
		if strings.EqualFold(e.Method, method) && e.Path == path {
			out = append(out, e)
		}
	}
	return out
}

// AssertCalled asserts that method and path were requested at least once.
func (s *Server) AssertCalled(t testing.TB, method, path string) {
	t.Helper()

	if len(s.Calls(method, path)) == 0 {
		t.Errorf("expected %s %s to be called, but it was not\nrequests:\n%s", method, path, s.describe())
	}
}

// AssertNotCalled asserts that method and path were never requested.
func (s *Server) AssertNotCalled(t testing.TB, method, path string) {
	t.Helper()

	if n := len(s.Calls(method, path)); n > 0 {
		t.Errorf("expected %s %s not to be called, but it was called %d time(s)", method, path, n)
	}
}

// AssertCallCount asserts that method and path were requested exactly n
// times.
func (s *Server) AssertCallCount(t testing.TB, method, path string, n int) {
	t.Helper()

	if got := len(s.Calls(method, path)); got != n {
		t.Errorf("expected %s %s to be called %d time(s), got %d", method, path, n, got)
	}
}

// AssertAllServed asserts that every request so far was answered from the
// recording.
func (s *Server) AssertAllServed(t testing.TB) {
	t.Helper()

	for _, e := range s.Requests() {
		if e.Outcome != server.OutcomeServed {
			t.Errorf("%s %s was not served: %s (%s)", e.Method, target(e), e.Outcome, e.Error)
		}
	}
}

func (s *Server) describe() string {
	var b strings.Builder
	for _, e := range s.Requests() {
		b.WriteString("  ")
		b.WriteString(e.Method)
		b.WriteString(" ")
		b.WriteString(target(e))
		b.WriteString(" -> ")
		b.WriteString(e.Outcome)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "  (none)\n"
	}
	return b.String()
}

func target(e *requestlog.Entry) string {
	if e.QueryString == "" {
		return e.Path
	}
	return e.Path + "?" + e.QueryString
}
