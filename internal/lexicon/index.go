// internal/lexicon/index.go
//
// In-memory lexicon index for challenge synthesis and word checks.
// Responsibilities:
//   - Hold the frequency-annotated word list (3–8 letters, A–Z only).
//   - Pre-index words by first, last and middle letter.
//   - Answer "buildable from these tiles" queries with an extra predicate.
//   - Pick a common-but-varied word from a result list.
//
// Notes:
//   - Built once at startup and never mutated; safe for concurrent readers.
//   - The middle letter of a word is at floor(len/2), also for even lengths.
package lexicon

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/robalobadob/wordtiles/apps/go-server/internal/letters"
)

const (
	MinWordLength = 3
	MaxWordLength = 8
)

// Entry is one lexicon word with its derived attributes.
type Entry struct {
	Word      string  `json:"word"`      // uppercase
	Frequency float64 `json:"frequency"` // relative usage score, >= 0
	Length    int     `json:"length"`
	Vowels    int     `json:"vowels"`
}

// Index is the immutable, queryable lexicon.
type Index struct {
	entries  []Entry        // sorted by word
	byWord   map[string]int // word -> position in entries
	byStart  [26][]int
	byEnd    [26][]int
	byMiddle [26][]int
}

// Filter narrows every query.
type Filter struct {
	MinLength int     // words shorter than this are skipped (0 = no floor)
	Exclude   WordSet // words already used this session
}

// New builds an Index from a word->frequency table. Words outside 3–8 letters
// or containing non-letters are dropped; negative frequencies clamp to 0.
// Duplicates that differ only by case keep the highest frequency.
func New(freqs map[string]float64) *Index {
	merged := make(map[string]float64, len(freqs))
	for raw, f := range freqs {
		// Check the raw letters before case folding: ToUpper maps some
		// non-ASCII runes onto A–Z ("ß" becomes "SS").
		w := strings.TrimSpace(raw)
		if len(w) < MinWordLength || len(w) > MaxWordLength || !isAlpha(w) {
			continue
		}
		w = strings.ToUpper(w)
		if f < 0 {
			f = 0
		}
		if old, ok := merged[w]; !ok || f > old {
			merged[w] = f
		}
	}

	ix := &Index{
		entries: make([]Entry, 0, len(merged)),
		byWord:  make(map[string]int, len(merged)),
	}
	for w, f := range merged {
		ix.entries = append(ix.entries, Entry{Word: w, Frequency: f, Length: len(w), Vowels: VowelCount(w)})
	}
	sort.Slice(ix.entries, func(i, j int) bool { return ix.entries[i].Word < ix.entries[j].Word })

	for i, e := range ix.entries {
		ix.byWord[e.Word] = i
		ix.byStart[FirstLetter(e.Word)-'A'] = append(ix.byStart[FirstLetter(e.Word)-'A'], i)
		ix.byEnd[LastLetter(e.Word)-'A'] = append(ix.byEnd[LastLetter(e.Word)-'A'], i)
		ix.byMiddle[MiddleLetter(e.Word)-'A'] = append(ix.byMiddle[MiddleLetter(e.Word)-'A'], i)
	}
	return ix
}

// Len is the number of indexed words.
func (ix *Index) Len() int { return len(ix.entries) }

// IsWord reports whether w is in the lexicon (case-insensitive).
func (ix *Index) IsWord(w string) bool {
	_, ok := ix.Lookup(w)
	return ok
}

// Lookup returns the entry for w, if present.
func (ix *Index) Lookup(w string) (Entry, bool) {
	i, ok := ix.byWord[strings.ToUpper(strings.TrimSpace(w))]
	if !ok {
		return Entry{}, false
	}
	return ix.entries[i], true
}

// Buildable returns every word constructible from the tiles.
func (ix *Index) Buildable(set letters.Set, f Filter) []Entry {
	return ix.query(nil, set, f, nil)
}

// StartingWith returns buildable words whose first letter is l.
func (ix *Index) StartingWith(l byte, set letters.Set, f Filter) []Entry {
	j, ok := slot(l)
	if !ok || len(ix.byStart[j]) == 0 {
		return nil
	}
	return ix.query(ix.byStart[j], set, f, nil)
}

// EndingWith returns buildable words whose last letter is l.
func (ix *Index) EndingWith(l byte, set letters.Set, f Filter) []Entry {
	j, ok := slot(l)
	if !ok || len(ix.byEnd[j]) == 0 {
		return nil
	}
	return ix.query(ix.byEnd[j], set, f, nil)
}

// WithMiddle returns buildable words whose letter at floor(len/2) is l.
func (ix *Index) WithMiddle(l byte, set letters.Set, f Filter) []Entry {
	j, ok := slot(l)
	if !ok || len(ix.byMiddle[j]) == 0 {
		return nil
	}
	return ix.query(ix.byMiddle[j], set, f, nil)
}

// WithVowels returns buildable words with at least min vowels.
func (ix *Index) WithVowels(min int, set letters.Set, f Filter) []Entry {
	return ix.query(nil, set, f, func(e Entry) bool { return e.Vowels >= min })
}

// ContainingLetter returns buildable words with at least min occurrences of l.
func (ix *Index) ContainingLetter(l byte, min int, set letters.Set, f Filter) []Entry {
	l = upper(l)
	return ix.query(nil, set, f, func(e Entry) bool { return CountLetter(e.Word, l) >= min })
}

// UsingLetters returns buildable words that contain every required letter.
func (ix *Index) UsingLetters(required []string, set letters.Set, f Filter) []Entry {
	req := make([]string, len(required))
	for i, l := range required {
		req[i] = strings.ToUpper(l)
	}
	return ix.query(nil, set, f, func(e Entry) bool { return HasAll(e.Word, req) })
}

// UniqueLetters returns buildable words with no repeated letter.
func (ix *Index) UniqueLetters(set letters.Set, f Filter) []Entry {
	return ix.query(nil, set, f, func(e Entry) bool { return AllDistinct(e.Word) })
}

// Where returns buildable words matching an arbitrary predicate.
func (ix *Index) Where(set letters.Set, f Filter, pred func(Entry) bool) []Entry {
	return ix.query(nil, set, f, pred)
}

// query scans candidates (all entries when nil, so positional callers must
// not pass an empty bucket) and keeps the ones that are
// buildable, pass the filter, and satisfy pred.
func (ix *Index) query(candidates []int, set letters.Set, f Filter, pred func(Entry) bool) []Entry {
	avail := set.Counts()
	var out []Entry
	keep := func(e Entry) {
		if e.Length < f.MinLength || !CanBuild(e.Word, avail) || f.Exclude.Has(e.Word) {
			return
		}
		if pred != nil && !pred(e) {
			return
		}
		out = append(out, e)
	}
	if candidates == nil {
		for _, e := range ix.entries {
			keep(e)
		}
		return out
	}
	for _, i := range candidates {
		keep(ix.entries[i])
	}
	return out
}

// Pick chooses among entries: sort by descending frequency, keep the top 30%
// (rounded up) and draw uniformly from that slice. ok is false for no entries.
func Pick(rng *rand.Rand, entries []Entry) (e Entry, ok bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Frequency != sorted[j].Frequency {
			return sorted[i].Frequency > sorted[j].Frequency
		}
		return sorted[i].Word < sorted[j].Word
	})
	top := TopShare(len(sorted))
	return sorted[rng.IntN(top)], true
}

// TopShare is ceil(0.3*n) computed in integers.
func TopShare(n int) int { return (n*3 + 9) / 10 }

// Stats summarizes the index by word length and vowel count.
type Stats struct {
	Words    int         `json:"words"`
	ByLength map[int]int `json:"byLength"`
	ByVowels map[int]int `json:"byVowels"`
}

// Stats reports counts for diagnostics.
func (ix *Index) Stats() Stats {
	st := Stats{Words: len(ix.entries), ByLength: map[int]int{}, ByVowels: map[int]int{}}
	for _, e := range ix.entries {
		st.ByLength[e.Length]++
		st.ByVowels[e.Vowels]++
	}
	return st
}

func slot(l byte) (int, bool) {
	l = upper(l)
	if l < 'A' || l > 'Z' {
		return 0, false
	}
	return int(l - 'A'), true
}

func upper(l byte) byte {
	if l >= 'a' && l <= 'z' {
		return l - 'a' + 'A'
	}
	return l
}
