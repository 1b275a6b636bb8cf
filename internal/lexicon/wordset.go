package lexicon

import "strings"

// WordSet is a case-insensitive set of words. The zero value is not usable;
// build one with NewWordSet.
type WordSet map[string]struct{}

// NewWordSet returns a set holding words.
func NewWordSet(words ...string) WordSet {
	s := make(WordSet, len(words))
	for _, w := range words {
		s.Add(w)
	}
	return s
}

// Add inserts w.
func (s WordSet) Add(w string) { s[strings.ToUpper(strings.TrimSpace(w))] = struct{}{} }

// Has reports whether w is present. A nil set holds nothing.
func (s WordSet) Has(w string) bool {
	if s == nil {
		return false
	}
	_, ok := s[strings.ToUpper(strings.TrimSpace(w))]
	return ok
}

// Clone returns an independent copy.
func (s WordSet) Clone() WordSet {
	out := make(WordSet, len(s))
	for w := range s {
		out[w] = struct{}{}
	}
	return out
}
