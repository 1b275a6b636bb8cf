// internal/challenge/types.go
//
// Core challenge definitions.
// Defines:
//   - Type: the closed set of challenge categories.
//   - Challenge: one issued puzzle (solution + parameters + theme).
//   - History: per-session memory of issued challenges and used words.
//   - Fingerprint: de-duplication key for a challenge's type and parameters.
package challenge

import (
	"strconv"
	"strings"

	"github.com/robalobadob/wordtiles/apps/go-server/internal/lexicon"
)

// Type is a challenge category.
type Type string

const (
	Start    Type = "start"
	End      Type = "end"
	Middle   Type = "middle"
	Vowels   Type = "vowels"
	Contains Type = "contains"
	Uses     Type = "uses"
	Unique   Type = "unique"

	// Relational types depend on the external word-relation oracle and are
	// not part of the default rotation.
	Rhyme   Type = "rhyme"
	Synonym Type = "synonym"
	Antonym Type = "antonym"
)

// DefaultTypes is the rotation used by a standard game.
var DefaultTypes = []Type{Start, End, Middle, Vowels, Contains, Uses, Unique}

// RelationalTypes can be appended to the rotation when an oracle is available.
var RelationalTypes = []Type{Rhyme, Synonym, Antonym}

// Relational reports whether t needs the relation oracle.
func (t Type) Relational() bool { return t == Rhyme || t == Synonym || t == Antonym }

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case Start, End, Middle, Vowels, Contains, Uses, Unique, Rhyme, Synonym, Antonym:
		return true
	}
	return false
}

// Theme is the background/accent color pair shown with a challenge.
type Theme struct {
	Background string `json:"background"`
	Accent     string `json:"accent"`
}

var themes = map[Type]Theme{
	Middle:   {"#F8EAD8", "#F15A24"}, // orange
	Start:    {"#DDF4F6", "#008C9E"}, // teal
	End:      {"#F9DDEC", "#D90368"}, // pink
	Vowels:   {"#E8F6DD", "#5C7F0B"}, // green
	Contains: {"#E6E0FF", "#6B4EFF"}, // purple
	Uses:     {"#FFF4DA", "#FF9F1C"}, // yellow
	Unique:   {"#E1E8F0", "#3066BE"}, // blue
	Rhyme:    {"#DDF4F6", "#008C9E"},
	Synonym:  {"#E8F6DD", "#5C7F0B"},
	Antonym:  {"#F9DDEC", "#D90368"},
}

// ThemeFor returns the color pair for t.
func ThemeFor(t Type) Theme { return themes[t] }

// Challenge is one synthesized puzzle. Only the fields relevant to Type are set.
type Challenge struct {
	Type           Type     `json:"type"`
	Solution       string   `json:"solution"`
	Letter         string   `json:"letter,omitempty"`  // start, end, middle, contains
	Count          int      `json:"count,omitempty"`   // vowels, contains
	Letters        []string `json:"letters,omitempty"` // uses
	Target         string   `json:"target,omitempty"`  // rhyme, synonym, antonym
	RequiredLength int      `json:"requiredLength"`
	Theme          Theme    `json:"theme"`
}

// Fingerprint identifies the challenge's type and distinguishing parameters.
func (c Challenge) Fingerprint() string {
	return fingerprint(c.Type, c.Letter, c.Count, c.Letters, c.Target)
}

func fingerprint(t Type, letter string, count int, letters []string, target string) string {
	switch t {
	case Vowels:
		return string(t) + "-" + strconv.Itoa(count)
	case Contains:
		return string(t) + "-" + letter + "-" + strconv.Itoa(count)
	case Uses:
		return string(t) + "-" + strings.Join(letters, ",")
	case Unique:
		return string(t)
	case Rhyme, Synonym, Antonym:
		return string(t) + "-" + strings.ToUpper(target)
	default:
		return string(t) + "-" + letter
	}
}

// History is the per-session record the selector and synthesizer consult.
// It only grows during a session; a new game starts from NewHistory.
type History struct {
	UsedSolutions  lexicon.WordSet     `json:"-"`
	UsedChallenges map[string]struct{} `json:"-"`
	UsedWords      lexicon.WordSet     `json:"-"`
	RecentTypes    []Type              `json:"recentTypes"`
	LastType       Type                `json:"lastType,omitempty"`
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{
		UsedSolutions:  lexicon.NewWordSet(),
		UsedChallenges: map[string]struct{}{},
		UsedWords:      lexicon.NewWordSet(),
	}
}

// Issued reports whether a challenge with this fingerprint was already handed out.
func (h *History) Issued(fp string) bool {
	_, ok := h.UsedChallenges[fp]
	return ok
}

// Record notes an issued challenge: fingerprint, solution and rotation.
// rotation is the type set the rotation buffer must cover before resetting.
func (h *History) Record(c Challenge, rotation []Type) {
	h.UsedChallenges[c.Fingerprint()] = struct{}{}
	h.UsedSolutions.Add(c.Solution)
	h.RecentTypes = Rotate(h.RecentTypes, c.Type, rotation)
	h.LastType = c.Type
}

// Clone returns an independent copy, used for previews.
func (h *History) Clone() *History {
	used := make(map[string]struct{}, len(h.UsedChallenges))
	for k := range h.UsedChallenges {
		used[k] = struct{}{}
	}
	return &History{
		UsedSolutions:  h.UsedSolutions.Clone(),
		UsedChallenges: used,
		UsedWords:      h.UsedWords.Clone(),
		RecentTypes:    append([]Type(nil), h.RecentTypes...),
		LastType:       h.LastType,
	}
}
