package replay

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseIndex(t *testing.T) {
	t.Parallel()

	const none = -1
	tests := []struct {
		behaviour Behaviour
		last      int
		length    int
		want      int
		ok        bool
	}{
		// Zero length never selects.
		{SequentialWrapping, 0, 0, 0, false},
		{SequentialClamping, 0, 0, 0, false},
		{SequentialOnce, none, 0, 0, false},
		{Random, 1, 0, 0, false},
		{AlwaysFirst, none, 0, 0, false},
		{AlwaysLast, 1, 0, 0, false},

		{AlwaysFirst, none, 1, 0, true},
		{AlwaysFirst, 3, 4, 0, true},
		{AlwaysLast, none, 1, 0, true},
		{AlwaysLast, 3, 2, 1, true},
		{AlwaysLast, 0, 5, 4, true},

		{SequentialWrapping, none, 4, 0, true},
		{SequentialWrapping, 0, 4, 1, true},
		{SequentialWrapping, 1, 4, 2, true},
		{SequentialWrapping, 2, 4, 3, true},
		{SequentialWrapping, 3, 4, 0, true},

		{SequentialClamping, none, 4, 0, true},
		{SequentialClamping, 2, 4, 3, true},
		{SequentialClamping, 3, 4, 3, true},
		{SequentialClamping, 9, 4, 3, true},

		{SequentialOnce, none, 4, 0, true},
		{SequentialOnce, 2, 4, 3, true},
		{SequentialOnce, 3, 4, 0, false},
		{SequentialOnce, 9, 4, 0, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/last=%d/len=%d", tt.behaviour, tt.last, tt.length), func(t *testing.T) {
			t.Parallel()
			got, ok := tt.behaviour.ChooseIndex(tt.last, tt.length, nil)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

type fixedSource int

func (f fixedSource) IntN(n int) int { return int(f) % n }

func TestChooseIndex_RandomUsesSource(t *testing.T) {
	t.Parallel()

	got, ok := Random.ChooseIndex(-1, 5, fixedSource(3))
	require.True(t, ok)
	assert.Equal(t, 3, got)

	got, ok = Random.ChooseIndex(3, 5, fixedSource(7))
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestChooseIndex_RandomCoverage(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	seen := make([]int, 5)
	last := -1
	for range 10000 {
		idx, ok := Random.ChooseIndex(last, len(seen), rng)
		require.True(t, ok)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(seen))
		seen[idx]++
		last = idx
	}
	for i, n := range seen {
		assert.Positive(t, n, "index %d never selected", i)
	}
}

func TestParseBehaviour(t *testing.T) {
	t.Parallel()

	for _, name := range Behaviours() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			b, err := ParseBehaviour(name)
			require.NoError(t, err)
			assert.Equal(t, name, b.String())

			text, err := b.MarshalText()
			require.NoError(t, err)
			var back Behaviour
			require.NoError(t, back.UnmarshalText(text))
			assert.Equal(t, b, back)
		})
	}

	b, err := ParseBehaviour("Sequential-Once")
	require.NoError(t, err)
	assert.Equal(t, SequentialOnce, b)

	_, err = ParseBehaviour("round-robin")
	assert.ErrorContains(t, err, "unrecognized behaviour")

	assert.Equal(t, "Behaviour(42)", Behaviour(42).String())
	_, err = Behaviour(42).MarshalText()
	assert.Error(t, err)
}
