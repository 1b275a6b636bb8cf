package lexicon

// Word predicates shared by index queries, the synthesizer and the validator.
// All of them expect uppercase ASCII words.

// IsVowel reports whether c is A, E, I, O or U.
func IsVowel(c byte) bool {
	switch c {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

// VowelCount counts vowels in w.
func VowelCount(w string) int {
	n := 0
	for i := 0; i < len(w); i++ {
		if IsVowel(w[i]) {
			n++
		}
	}
	return n
}

// MiddleIndex is floor(len/2). Even-length words use the upper of the two
// central positions.
func MiddleIndex(w string) int { return len(w) / 2 }

// MiddleLetter returns the letter at MiddleIndex, or 0 for an empty word.
func MiddleLetter(w string) byte {
	if w == "" {
		return 0
	}
	return w[MiddleIndex(w)]
}

// FirstLetter returns w[0], or 0 for an empty word.
func FirstLetter(w string) byte {
	if w == "" {
		return 0
	}
	return w[0]
}

// LastLetter returns the final letter, or 0 for an empty word.
func LastLetter(w string) byte {
	if w == "" {
		return 0
	}
	return w[len(w)-1]
}

// CountLetter counts occurrences of c in w.
func CountLetter(w string, c byte) int {
	n := 0
	for i := 0; i < len(w); i++ {
		if w[i] == c {
			n++
		}
	}
	return n
}

// HasAll reports whether every letter in required occurs in w at least once.
func HasAll(w string, required []string) bool {
	for _, l := range required {
		if l == "" || CountLetter(w, l[0]) == 0 {
			return false
		}
	}
	return true
}

// AllDistinct reports whether no letter of w repeats.
func AllDistinct(w string) bool {
	var seen [26]bool
	for i := 0; i < len(w); i++ {
		j := w[i] - 'A'
		if j >= 26 {
			return false
		}
		if seen[j] {
			return false
		}
		seen[j] = true
	}
	return true
}

// MostRepeated returns the letter with the highest occurrence count in w
// (first such letter on ties) and that count.
func MostRepeated(w string) (byte, int) {
	var counts [26]int
	var best byte
	bestN := 0
	for i := 0; i < len(w); i++ {
		j := w[i] - 'A'
		if j >= 26 {
			continue
		}
		counts[j]++
		if counts[j] > bestN {
			best, bestN = w[i], counts[j]
		}
	}
	return best, bestN
}

// CanBuild reports whether w can be spelled from the available multiset:
// no letter occurs in w more often than in avail.
func CanBuild(w string, avail [26]int) bool {
	var need [26]int
	for i := 0; i < len(w); i++ {
		j := w[i] - 'A'
		if j >= 26 {
			return false
		}
		need[j]++
		if need[j] > avail[j] {
			return false
		}
	}
	return true
}

// isAlpha reports whether s is all ASCII letters, either case.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := upper(s[i]); c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
