// internal/letters/letters.go
//
// Letter tiles for a game session.
// Responsibilities:
//   - Set: the fixed, ordered multiset of 8 tiles a player builds words from.
//   - Generator: draws a fresh Set per game (3 vowels + 5 safe consonants).
//   - Parse: accepts a caller-fixed Set (tests, replays, "initial letters").
//
// Notes:
//   - Tiles are uppercase ASCII A–Z.
//   - Rare consonants (X, Y, Z, Q, J) are never dealt.
//   - Generation order is preserved; "uses" challenges read the first N tiles.
package letters

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

const (
	// Size is the number of tiles in every Set.
	Size = 8
	// MinVowels is the minimum number of vowel tiles in every Set.
	MinVowels = 3

	Vowels   = "AEIOU"
	Denylist = "XYZQJ"
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// ErrInvalidSet is returned by Parse for malformed tile strings.
var ErrInvalidSet = errors.New("invalid letter set")

// safeConsonants is the consonant pool tiles are dealt from.
var safeConsonants = func() string {
	var b strings.Builder
	for i := 0; i < len(Alphabet); i++ {
		c := Alphabet[i]
		if IsVowel(c) || strings.IndexByte(Denylist, c) >= 0 {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}()

// Set is an ordered collection of uppercase tiles, e.g. "AEICTRSN".
type Set string

// Counts returns the multiset view: occurrences per letter A–Z.
func (s Set) Counts() [26]int {
	var c [26]int
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			c[s[i]-'A']++
		}
	}
	return c
}

// Has reports whether letter l is among the tiles.
func (s Set) Has(l byte) bool { return strings.IndexByte(string(s), upper(l)) >= 0 }

// Letters returns the tiles as one-letter strings in generation order.
func (s Set) Letters() []string {
	out := make([]string, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = string(s[i])
	}
	return out
}

// Prefix returns the first n tiles (clamped to the set size).
func (s Set) Prefix(n int) []string {
	if n > len(s) {
		n = len(s)
	}
	if n < 0 {
		n = 0
	}
	return s[:n].Letters()
}

// VowelCount is the number of vowel tiles.
func (s Set) VowelCount() int {
	n := 0
	for i := 0; i < len(s); i++ {
		if IsVowel(s[i]) {
			n++
		}
	}
	return n
}

// String renders the set as comma-separated tiles.
func (s Set) String() string { return strings.Join(s.Letters(), ",") }

// IsVowel reports whether l is one of A, E, I, O, U (case-insensitive).
func IsVowel(l byte) bool { return strings.IndexByte(Vowels, upper(l)) >= 0 }

// Parse validates a caller-fixed tile string. Separators (spaces, commas) are
// ignored and input is uppercased.
func Parse(raw string) (Set, error) {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		switch {
		case r == ' ' || r == ',':
			continue
		case r < 'A' || r > 'Z':
			return "", fmt.Errorf("%w: %q is not a letter", ErrInvalidSet, r)
		case strings.ContainsRune(Denylist, r):
			return "", fmt.Errorf("%w: %c is not dealt", ErrInvalidSet, r)
		}
		b.WriteRune(r)
	}
	s := Set(b.String())
	if len(s) != Size {
		return "", fmt.Errorf("%w: need %d letters, got %d", ErrInvalidSet, Size, len(s))
	}
	if s.VowelCount() < MinVowels {
		return "", fmt.Errorf("%w: need at least %d vowels", ErrInvalidSet, MinVowels)
	}
	return s, nil
}

// Generator deals letter sets.
type Generator struct {
	rng          *rand.Rand
	allowRepeats bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithRepeats lets the same tile be dealt more than once.
func WithRepeats(on bool) Option {
	return func(g *Generator) { g.allowRepeats = on }
}

// NewGenerator returns a Generator drawing from rng.
func NewGenerator(rng *rand.Rand, opts ...Option) *Generator {
	g := &Generator{rng: rng}
	for _, o := range opts {
		o(g)
	}
	return g
}

// New deals MinVowels vowels followed by consonants until Size tiles.
// Without repeats every tile is distinct.
func (g *Generator) New() Set {
	tiles := make([]byte, 0, Size)
	seen := make(map[byte]bool, Size)
	draw := func(pool string) {
		for {
			c := pool[g.rng.IntN(len(pool))]
			if g.allowRepeats || !seen[c] {
				seen[c] = true
				tiles = append(tiles, c)
				return
			}
		}
	}
	for len(tiles) < MinVowels {
		draw(Vowels)
	}
	for len(tiles) < Size {
		draw(safeConsonants)
	}
	return Set(tiles)
}

func upper(l byte) byte {
	if l >= 'a' && l <= 'z' {
		return l - 'a' + 'A'
	}
	return l
}
