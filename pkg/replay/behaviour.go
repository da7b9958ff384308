package replay

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Behaviour selects which recorded response to serve next for a key.
type Behaviour int

// Selection behaviours.
const (
	AlwaysFirst Behaviour = iota
	AlwaysLast
	Random
	SequentialClamping
	SequentialOnce
	SequentialWrapping
)

var behaviourNames = [...]string{
	AlwaysFirst:        "always-first",
	AlwaysLast:         "always-last",
	Random:             "random",
	SequentialClamping: "sequential-clamping",
	SequentialOnce:     "sequential-once",
	SequentialWrapping: "sequential-wrapping",
}

// Behaviours returns the names accepted by ParseBehaviour.
func Behaviours() []string {
	return append([]string(nil), behaviourNames[:]...)
}

// ParseBehaviour parses a behaviour name such as "sequential-wrapping".
func ParseBehaviour(s string) (Behaviour, error) {
	for i, name := range behaviourNames {
		if strings.EqualFold(s, name) {
			return Behaviour(i), nil
		}
	}
	return 0, fmt.Errorf("unrecognized behaviour %q (valid: %s)", s, strings.Join(behaviourNames[:], ", "))
}

func (b Behaviour) String() string {
	if b < 0 || int(b) >= len(behaviourNames) {
		return fmt.Sprintf("Behaviour(%d)", int(b))
	}
	return behaviourNames[b]
}

// MarshalText implements encoding.TextMarshaler.
func (b Behaviour) MarshalText() ([]byte, error) {
	if b < 0 || int(b) >= len(behaviourNames) {
		return nil, fmt.Errorf("invalid behaviour %d", int(b))
	}
	return []byte(behaviourNames[b]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Behaviour) UnmarshalText(text []byte) error {
	parsed, err := ParseBehaviour(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Source is the entropy used by Random. *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource draws from the process-wide math/rand/v2 generator.
var DefaultSource Source = globalSource{}

// ChooseIndex returns the index to serve next from a list of length
// responses, given the index served last (negative if none has been served).
// It reports false when nothing should be served. rng is only consulted by
// Random; a nil rng falls back to DefaultSource.
func (b Behaviour) ChooseIndex(last, length int, rng Source) (int, bool) {
	if length < 1 {
		return 0, false
	}

	switch b {
	case AlwaysFirst:
		return 0, true
	case AlwaysLast:
		return length - 1, true
	case Random:
		if rng == nil {
			rng = DefaultSource
		}
		return rng.IntN(length), true
	case SequentialClamping, SequentialOnce, SequentialWrapping:
		if last < 0 {
			return 0, true
		}
		next := last + 1
		switch {
		case b == SequentialWrapping:
			return next % length, true
		case next < length:
			return next, true
		case b == SequentialClamping:
			return length - 1, true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}
