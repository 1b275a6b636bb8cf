package challenge

// Difficulty curves by level.

// RequiredLength is the minimum solution length at level.
func RequiredLength(level int) int {
	switch {
	case level <= 5:
		return 3
	case level <= 10:
		return 4
	case level <= 15:
		return 5
	case level <= 20:
		return 6
	case level <= 25:
		return 7
	default:
		return 8
	}
}

// VowelThreshold is the vowel count a "vowels" challenge asks for.
func VowelThreshold(level int) int {
	switch {
	case level <= 15:
		return 2
	case level <= 30:
		return 3
	default:
		return 4
	}
}

// ContainsThreshold is how often the letter must occur in a "contains" challenge.
func ContainsThreshold(level int) int { return max(2, level/5+2) }

// UsesCount is how many leading tiles a "uses" challenge requires.
func UsesCount(level int) int { return min(3, level/5+2) }
