package challenge

import (
	"fmt"
	"strings"

	"github.com/robalobadob/wordtiles/apps/go-server/internal/lexicon"
)

// Satisfies reports whether word meets the type-specific rule of c. Words are
// compared in uppercase. Relational types cannot be decided locally and
// always report true here; the validator asks the oracle instead.
func Satisfies(c Challenge, word string) bool {
	w := strings.ToUpper(strings.TrimSpace(word))
	if w == "" {
		return false
	}
	switch c.Type {
	case Start:
		return c.Letter != "" && lexicon.FirstLetter(w) == c.Letter[0]
	case End:
		return c.Letter != "" && lexicon.LastLetter(w) == c.Letter[0]
	case Middle:
		return c.Letter != "" && lexicon.MiddleLetter(w) == c.Letter[0]
	case Vowels:
		return lexicon.VowelCount(w) >= c.Count
	case Contains:
		return c.Letter != "" && lexicon.CountLetter(w, c.Letter[0]) >= c.Count
	case Uses:
		return lexicon.HasAll(w, c.Letters)
	case Unique:
		return lexicon.AllDistinct(w)
	case Rhyme, Synonym, Antonym:
		return true
	}
	return false
}

// Reason is the player-facing message for a word that fails c.
func Reason(c Challenge) string {
	switch c.Type {
	case Start:
		return "Must start with " + c.Letter
	case End:
		return "Must end with " + c.Letter
	case Middle:
		return "Need " + c.Letter + " in middle"
	case Vowels:
		return fmt.Sprintf("Need ≥%d vowels", c.Count)
	case Contains:
		return fmt.Sprintf("Need ≥%d %ss", c.Count, c.Letter)
	case Uses:
		return "Must use: " + strings.Join(c.Letters, ", ")
	case Unique:
		return "No repeated letters allowed"
	case Rhyme:
		return "Doesn't rhyme with " + c.Target
	case Synonym:
		return "Not a synonym of " + c.Target
	case Antonym:
		return "Not an antonym of " + c.Target
	}
	return "Try again!"
}

// Verify re-checks that a stored solution meets its own challenge before it
// is revealed. note describes the broken rule when ok is false.
func Verify(c Challenge) (ok bool, note string) {
	if Satisfies(c, c.Solution) {
		return true, ""
	}
	switch c.Type {
	case Start:
		note = "(should start with " + c.Letter + ")"
	case End:
		note = "(should end with " + c.Letter + ")"
	case Middle:
		note = "(should have " + c.Letter + " in middle)"
	case Vowels:
		note = fmt.Sprintf("(should have ≥%d vowels)", c.Count)
	case Contains:
		note = fmt.Sprintf("(should contain ≥%d %ss)", c.Count, c.Letter)
	case Uses:
		note = "(should use all: " + strings.Join(c.Letters, ", ") + ")"
	case Unique:
		note = "(should have no repeated letters)"
	default:
		note = "(unknown challenge type)"
	}
	return false, note
}

// Describe renders the challenge prompt shown to the player.
func Describe(c Challenge) string {
	n := c.RequiredLength
	if n == 0 {
		n = lexicon.MinWordLength
	}
	switch c.Type {
	case Start:
		return fmt.Sprintf("Word starting with %s (%d+ letters)", orQ(c.Letter), n)
	case End:
		return fmt.Sprintf("Word ending with %s (%d+ letters)", orQ(c.Letter), n)
	case Middle:
		return fmt.Sprintf("Word with %s in middle (%d+ letters)", orQ(c.Letter), n)
	case Vowels:
		return fmt.Sprintf("Word with ≥%d vowels", c.Count)
	case Contains:
		return fmt.Sprintf("Word containing ≥%d %ss (%d+ letters)", c.Count, orQ(c.Letter), n)
	case Uses:
		all := "?"
		if len(c.Letters) > 0 {
			all = strings.Join(c.Letters, ", ")
		}
		return fmt.Sprintf("Word using all: %s (%d+ letters)", all, n)
	case Unique:
		return fmt.Sprintf("Word with no repeated letters (%d+ letters)", n)
	case Rhyme:
		return "Word that rhymes with " + orQ(c.Target)
	case Synonym:
		return "Synonym of " + orQ(c.Target)
	case Antonym:
		return "Antonym of " + orQ(c.Target)
	}
	return ""
}

func orQ(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
