// Package filter selects which recorded interactions are loaded into the
// replay store. Filters run before the store is built; the store itself has
// no notion of filtering.
package filter

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/getmockd/harplay/pkg/replay"
)

// Predicate decides whether a recorded interaction is kept.
type Predicate interface {
	Match(rec replay.Record) bool
}

// Func adapts a function to Predicate.
type Func func(rec replay.Record) bool

// Match calls f(rec).
func (f Func) Match(rec replay.Record) bool { return f(rec) }

// None keeps every record.
var None Predicate = Func(func(replay.Record) bool { return true })

// All keeps a record only if every predicate keeps it. Nil predicates are
// ignored, so All() keeps everything.
func All(preds ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return Func(func(rec replay.Record) bool {
		for _, p := range kept {
			if !p.Match(rec) {
				return false
			}
		}
		return true
	})
}

// Regex keeps records whose full request URL contains a match for pattern.
func Regex(pattern string) (Predicate, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid URL filter %q: %w", pattern, err)
	}
	return Func(func(rec replay.Record) bool {
		return re.MatchString(rec.Request.URL)
	}), nil
}

// Glob keeps records whose URL path matches pattern. "**" matches across
// path segments, e.g. "/api/**" or "/static/*.js".
func Glob(pattern string) (Predicate, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid URL glob %q: %w", pattern, doublestar.ErrBadPattern)
	}
	return Func(func(rec replay.Record) bool {
		u, err := url.Parse(rec.Request.URL)
		if err != nil {
			return false
		}
		path := u.Path
		if path == "" {
			path = "/"
		}
		ok, err := doublestar.Match(pattern, path)
		return err == nil && ok
	}), nil
}

// Expr keeps records for which the boolean expression evaluates to true.
//
// The expression sees:
//
//	method   string             request method
//	url      string             full recorded URL
//	host     string             URL host, including port
//	path     string             URL path
//	query    string             raw query string
//	status   int                recorded response status
//	headers  map[string]string  request headers, lower-cased names, first value
//
// Example: `method == "GET" && status < 400 && host endsWith "example.org"`.
func Expr(source string) (Predicate, error) {
	program, err := expr.Compile(source, expr.Env(exprEnv(replay.Record{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return &exprPredicate{program: program}, nil
}

type exprPredicate struct {
	program *vm.Program
}

func (p *exprPredicate) Match(rec replay.Record) bool {
	out, err := expr.Run(p.program, exprEnv(rec))
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

func exprEnv(rec replay.Record) map[string]any {
	env := map[string]any{
		"method":  rec.Request.Method,
		"url":     rec.Request.URL,
		"host":    "",
		"path":    "",
		"query":   "",
		"status":  rec.Response.StatusCode,
		"headers": map[string]string{},
	}
	if u, err := url.Parse(rec.Request.URL); err == nil {
		env["host"] = u.Host
		env["path"] = u.Path
		env["query"] = u.RawQuery
	}
	headers := make(map[string]string, len(rec.Request.Headers))
	for _, h := range rec.Request.Headers {
		name := strings.ToLower(h.Name)
		if _, ok := headers[name]; !ok {
			headers[name] = h.Value
		}
	}
	env["headers"] = headers
	return env
}
