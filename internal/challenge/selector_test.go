package challenge

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorNeverRepeatsBackToBack(t *testing.T) {
	s := NewSelector(rand.New(rand.NewPCG(1, 1)), nil)
	var recent []Type
	var last Type
	for i := 0; i < 500; i++ {
		next := s.Pick(recent, last)
		require.NotEqual(t, last, next, "pick %d repeated %s", i, last)
		recent = Rotate(recent, next, s.Types())
		last = next
	}
}

func TestSelectorExhaustsRotation(t *testing.T) {
	s := NewSelector(rand.New(rand.NewPCG(5, 9)), nil)
	var recent []Type
	var last Type

	// The first len(types) picks cover every type exactly once.
	seen := map[Type]int{}
	for range s.Types() {
		last = s.Pick(recent, last)
		recent = Rotate(recent, last, s.Types())
		seen[last]++
	}
	require.Len(t, seen, len(s.Types()))
	for typ, n := range seen {
		assert.Equal(t, 1, n, "%s", typ)
	}

	// Afterwards the buffer restarts from the last pick, so every following
	// block of len-1 picks covers the remaining types once.
	for round := 0; round < 20; round++ {
		block := map[Type]bool{last: true}
		for i := 0; i < len(s.Types())-1; i++ {
			last = s.Pick(recent, last)
			recent = Rotate(recent, last, s.Types())
			require.False(t, block[last], "round %d repeated %s before rotation finished", round, last)
			block[last] = true
		}
		require.Len(t, block, len(s.Types()))
	}
}

func TestSelectorSingletonWaivesRepeatRule(t *testing.T) {
	s := NewSelector(rand.New(rand.NewPCG(2, 2)), []Type{Start})
	assert.Equal(t, Start, s.Pick(nil, Start))
	assert.Equal(t, Start, s.Pick([]Type{Start}, Start))
}

func TestAvailable(t *testing.T) {
	s := NewSelector(rand.New(rand.NewPCG(2, 2)), []Type{Start, End, Middle})
	assert.Equal(t, []Type{Middle}, s.Available([]Type{Start, End}))
	assert.Equal(t, []Type{Start, End, Middle}, s.Available([]Type{Start, End, Middle}))
	assert.Equal(t, []Type{Start, End, Middle}, s.Available(nil))
}

func TestRotate(t *testing.T) {
	all := []Type{Start, End, Middle}
	buf := Rotate(nil, Start, all)
	assert.Equal(t, []Type{Start}, buf)
	buf = Rotate(buf, End, all)
	assert.Equal(t, []Type{Start, End}, buf)
	buf = Rotate(buf, Middle, all)
	assert.Equal(t, []Type{Middle}, buf)
}

func TestRotateKeepsOneEntryPerType(t *testing.T) {
	all := []Type{Start, End, Middle}
	buf := Rotate([]Type{Start, End}, Start, all)
	assert.Equal(t, []Type{Start, End}, buf)
	buf = Rotate(buf, Middle, all)
	assert.Equal(t, []Type{Middle}, buf)
}
