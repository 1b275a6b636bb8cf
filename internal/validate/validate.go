// internal/validate/validate.go
//
// Submission validation. Checks run in a fixed order and the first failure
// decides the verdict:
//   1. length (3+ letters)
//   2. spelled from the dealt tiles (multiset)
//   3. not already used this session
//   4. a real word (WordChecker)
//   5. at least the challenge's required length
//   6. the challenge rule itself
package validate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robalobadob/wordtiles/apps/go-server/internal/challenge"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/letters"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/lexicon"
)

var (
	ErrTooShort            = errors.New("word too short")
	ErrLettersUnavailable  = errors.New("letters not available")
	ErrAlreadyUsed         = errors.New("word already used")
	ErrNotAWord            = errors.New("not a real word")
	ErrBelowRequiredLength = errors.New("below required length")
	ErrChallengeMismatch   = errors.New("challenge not met")
)

// Verdict is the outcome of one submission. Err is one of the sentinel
// errors above when OK is false.
type Verdict struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
	Word   string `json:"word"`
	Err    error  `json:"-"`
}

func fail(word string, err error, reason string) Verdict {
	return Verdict{Word: word, Err: err, Reason: reason}
}

// WordChecker decides whether a word exists.
type WordChecker interface {
	IsWord(ctx context.Context, word string) bool
}

// CheckerFunc adapts a function to WordChecker.
type CheckerFunc func(ctx context.Context, word string) bool

func (f CheckerFunc) IsWord(ctx context.Context, word string) bool { return f(ctx, word) }

// Lexicon checks words against the in-memory lexicon.
func Lexicon(ix *lexicon.Index) WordChecker {
	return CheckerFunc(func(_ context.Context, w string) bool { return ix.IsWord(w) })
}

// AnyOf accepts a word when any checker does, asking them in order.
func AnyOf(cs ...WordChecker) WordChecker {
	return CheckerFunc(func(ctx context.Context, w string) bool {
		for _, c := range cs {
			if c != nil && c.IsWord(ctx, w) {
				return true
			}
		}
		return false
	})
}

// Validator applies the submission rules.
type Validator struct {
	words     WordChecker
	relations challenge.RelationSource
}

// Option configures a Validator.
type Option func(*Validator)

// WithRelations lets the validator decide rhyme/synonym/antonym challenges.
func WithRelations(rs challenge.RelationSource) Option {
	return func(v *Validator) { v.relations = rs }
}

// New builds a Validator backed by words.
func New(words WordChecker, opts ...Option) *Validator {
	v := &Validator{words: words}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate checks raw against the challenge, the dealt tiles and the words
// already used this session. It may block on network lookups.
func (v *Validator) Validate(ctx context.Context, raw string, c challenge.Challenge, set letters.Set, used lexicon.WordSet) Verdict {
	w := strings.ToUpper(strings.TrimSpace(raw))

	if len(w) < lexicon.MinWordLength {
		return fail(w, ErrTooShort, "Need 3+ letters")
	}
	if !lexicon.CanBuild(w, set.Counts()) {
		return fail(w, ErrLettersUnavailable, "Use provided letters only")
	}
	if used.Has(w) {
		return fail(w, ErrAlreadyUsed, "You already used "+w)
	}
	if v.words == nil || !v.words.IsWord(ctx, w) {
		return fail(w, ErrNotAWord, "Not a real word")
	}
	if c.RequiredLength > 0 && len(w) < c.RequiredLength {
		return fail(w, ErrBelowRequiredLength, fmt.Sprintf("Word must be at least %d letters long", c.RequiredLength))
	}
	if !v.satisfies(ctx, c, w) {
		return fail(w, ErrChallengeMismatch, challenge.Reason(c))
	}
	return Verdict{OK: true, Word: w}
}

func (v *Validator) satisfies(ctx context.Context, c challenge.Challenge, w string) bool {
	if !c.Type.Relational() {
		return challenge.Satisfies(c, w)
	}
	if v.relations == nil {
		return false
	}
	for _, r := range v.relations.Related(ctx, string(c.Type), strings.ToLower(c.Target)) {
		if strings.EqualFold(r, w) {
			return true
		}
	}
	return false
}
