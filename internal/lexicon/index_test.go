package lexicon

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordtiles/apps/go-server/internal/letters"
)

const set = letters.Set("AEICTRSN")

func testIndex() *Index {
	return New(map[string]float64{
		"cat": 90, "care": 80, "cart": 70, "crane": 60, "cane": 50, "can": 40,
		"rat": 85, "rate": 30, "rain": 20, "train": 25, "stain": 15,
		"tea": 10, "eat": 12, "nice": 8, "cent": 6, "scare": 5, "retain": 4,
		// ATTIC needs two Ts, DOG is off the tiles, XI and CAT'S get dropped.
		"attic": 3, "dog": 99, "xi": 50, "cat's": 50, "CAT": 1, "ceramic": -1,
	})
}

func words(es []Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Word
	}
	return out
}

func TestNewFiltersAndNormalizes(t *testing.T) {
	ix := testIndex()
	assert.True(t, ix.IsWord("cat"))
	assert.True(t, ix.IsWord(" Cat "))
	assert.False(t, ix.IsWord("xi"))
	assert.False(t, ix.IsWord("cat's"))

	e, ok := ix.Lookup("cat")
	require.True(t, ok)
	assert.Equal(t, Entry{Word: "CAT", Frequency: 90, Length: 3, Vowels: 1}, e)

	e, ok = ix.Lookup("ceramic")
	require.True(t, ok)
	assert.Zero(t, e.Frequency)
}

func TestNewRejectsNonASCII(t *testing.T) {
	ix := New(map[string]float64{"straße": 5, "\ufb01ne": 5, "café": 5, "fine": 1})
	assert.Equal(t, 1, ix.Len())
	assert.True(t, ix.IsWord("FINE"))
	assert.False(t, ix.IsWord("STRASSE"), "folded from a non-ASCII source word")
}

func TestBuildableRespectsMultiset(t *testing.T) {
	ix := testIndex()
	got := words(ix.Buildable(set, Filter{}))
	assert.Contains(t, got, "CAT")
	assert.Contains(t, got, "RETAIN")
	assert.NotContains(t, got, "ATTIC", "two Ts but only one tile")
	assert.NotContains(t, got, "DOG")

	got = words(ix.Buildable(letters.Set("AEITTCRS"), Filter{}))
	assert.Contains(t, got, "ATTIC")
}

func TestPositionalQueries(t *testing.T) {
	ix := testIndex()

	for _, w := range words(ix.StartingWith('c', set, Filter{})) {
		assert.Equal(t, byte('C'), w[0], w)
	}
	for _, w := range words(ix.EndingWith('E', set, Filter{})) {
		assert.Equal(t, byte('E'), w[len(w)-1], w)
	}

	// CARE: floor(4/2)=2 -> 'R'; CRANE: 5/2=2 -> 'A'; RETAIN: 6/2=3 -> 'A'.
	mid := words(ix.WithMiddle('R', set, Filter{}))
	assert.Contains(t, mid, "CARE")
	assert.Contains(t, mid, "CART")
	assert.NotContains(t, mid, "CRANE")
	assert.Contains(t, words(ix.WithMiddle('A', set, Filter{})), "RETAIN")
	assert.Equal(t, byte('R'), MiddleLetter("CARE"))

	assert.Empty(t, ix.StartingWith('Q', set, Filter{}), "no Q words at all")
	assert.Empty(t, ix.EndingWith('Q', set, Filter{}))
	assert.Empty(t, ix.WithMiddle('?', set, Filter{}))
}

func TestFilterLengthAndExclusion(t *testing.T) {
	ix := testIndex()
	got := words(ix.StartingWith('R', set, Filter{MinLength: 4}))
	assert.ElementsMatch(t, []string{"RATE", "RAIN", "RETAIN"}, got)

	got = words(ix.StartingWith('R', set, Filter{Exclude: NewWordSet("rat", "RAIN")}))
	assert.ElementsMatch(t, []string{"RATE", "RETAIN"}, got)
}

func TestPredicateQueries(t *testing.T) {
	ix := testIndex()

	for _, e := range ix.WithVowels(3, set, Filter{}) {
		assert.GreaterOrEqual(t, VowelCount(e.Word), 3, e.Word)
	}
	assert.Contains(t, words(ix.WithVowels(3, set, Filter{})), "RETAIN")

	tt := words(ix.ContainingLetter('t', 2, letters.Set("AEITTCRS"), Filter{}))
	assert.Equal(t, []string{"ATTIC"}, tt)

	uses := words(ix.UsingLetters([]string{"c", "a"}, set, Filter{}))
	for _, w := range uses {
		assert.True(t, strings.ContainsRune(w, 'C') && strings.ContainsRune(w, 'A'), w)
	}
	assert.Contains(t, uses, "CRANE")

	for _, w := range words(ix.UniqueLetters(letters.Set("AEITTCRS"), Filter{})) {
		assert.True(t, AllDistinct(w), w)
	}
	assert.NotContains(t, words(ix.UniqueLetters(letters.Set("AEITTCRS"), Filter{})), "ATTIC")
}

func TestPickPrefersFrequentWords(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	_, ok := Pick(rng, nil)
	assert.False(t, ok)

	es := []Entry{
		{Word: "AAA", Frequency: 1}, {Word: "BBB", Frequency: 9}, {Word: "CCC", Frequency: 5},
		{Word: "DDD", Frequency: 2}, {Word: "EEE", Frequency: 8}, {Word: "FFF", Frequency: 3},
		{Word: "GGG", Frequency: 4}, {Word: "HHH", Frequency: 7}, {Word: "III", Frequency: 6},
		{Word: "JJJ", Frequency: 0},
	}
	seen := map[string]bool{}
	for i := 0; i < 300; i++ {
		e, ok := Pick(rng, es)
		require.True(t, ok)
		seen[e.Word] = true
	}
	// ceil(0.3*10) = 3 -> BBB, EEE, HHH
	assert.Equal(t, map[string]bool{"BBB": true, "EEE": true, "HHH": true}, seen)
	assert.Equal(t, "AAA", es[0].Word, "input must not be reordered")
}

func TestTopShare(t *testing.T) {
	cases := map[int]int{1: 1, 2: 1, 3: 1, 4: 2, 10: 3, 11: 4, 100: 30}
	for n, want := range cases {
		assert.Equal(t, want, TopShare(n), "n=%d", n)
	}
}

func TestPredicates(t *testing.T) {
	assert.Equal(t, 3, VowelCount("RETAIN"))
	assert.Equal(t, 2, CountLetter("ATTIC", 'T'))
	assert.True(t, HasAll("CRANE", []string{"C", "N"}))
	assert.False(t, HasAll("CRANE", []string{"C", "T"}))
	assert.False(t, AllDistinct("ATTIC"))
	l, n := MostRepeated("ATTIC")
	assert.Equal(t, byte('T'), l)
	assert.Equal(t, 2, n)
	assert.True(t, CanBuild("CAT", set.Counts()))
	assert.False(t, CanBuild("CAB", set.Counts()))
	assert.False(t, CanBuild("ca", set.Counts()))
}

func TestStats(t *testing.T) {
	st := testIndex().Stats()
	assert.Equal(t, testIndex().Len(), st.Words)
	assert.Equal(t, 6, st.ByLength[3]) // CAT CAN RAT TEA EAT DOG
}
