package letters

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorDealsValidSets(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 200; i++ {
		s := g.New()
		require.Len(t, s, Size)
		assert.GreaterOrEqual(t, s.VowelCount(), MinVowels)

		seen := map[byte]bool{}
		for j := 0; j < len(s); j++ {
			c := s[j]
			assert.False(t, seen[c], "repeated tile %c in %s", c, s)
			seen[c] = true
			assert.NotContains(t, Denylist, string(c))
			if j < MinVowels {
				assert.True(t, IsVowel(c), "tile %d of %s should be a vowel", j, s)
			} else {
				assert.False(t, IsVowel(c), "tile %d of %s should be a consonant", j, s)
			}
		}
	}
}

func TestGeneratorWithRepeats(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewPCG(7, 7)), WithRepeats(true))
	repeated := false
	for i := 0; i < 200; i++ {
		s := g.New()
		require.Len(t, s, Size)
		assert.GreaterOrEqual(t, s.VowelCount(), MinVowels)
		for _, n := range s.Counts() {
			if n > 1 {
				repeated = true
			}
		}
	}
	assert.True(t, repeated, "200 deals with replacement should repeat a tile at least once")
}

func TestParse(t *testing.T) {
	s, err := Parse("a, e, i, c, t, r, s, n")
	require.NoError(t, err)
	assert.Equal(t, Set("AEICTRSN"), s)
	assert.Equal(t, []string{"A", "E", "I"}, s.Prefix(3))
	assert.True(t, s.Has('c'))
	assert.False(t, s.Has('B'))

	cases := map[string]string{
		"short":      "AEICT",
		"few vowels": "ABCDFGHK",
		"denylisted": "AEIXTRSN",
		"digit":      "AEI1TRSN",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw)
			require.ErrorIs(t, err, ErrInvalidSet)
		})
	}
}

func TestCounts(t *testing.T) {
	c := Set("AAEITTRS").Counts()
	assert.Equal(t, 2, c['A'-'A'])
	assert.Equal(t, 2, c['T'-'A'])
	assert.Equal(t, 0, c['Z'-'A'])
	assert.Equal(t, "A,A,E,I,T,T,R,S", Set("AAEITTRS").String())
	assert.True(t, strings.Contains(safeConsonants, "B"))
	assert.False(t, strings.ContainsAny(safeConsonants, Denylist+Vowels))
}
