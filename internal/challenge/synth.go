// internal/challenge/synth.go
//
// Challenge synthesis.
// Responsibilities:
//   - Choose a type (rotation, fingerprint de-dup, "has any answer" check).
//   - Skip any rung whose challenge was already issued this game.
//   - Build a concrete challenge for a type by walking its fallback ladder:
//     ideal parameters first, then alternate letters, a lower length floor,
//     a lower count, and finally a word derived from whatever the tiles allow.
//   - Never fail: the last rung always produces a challenge.
//
// Notes:
//   - Synthesis reads History but never writes it; the session records the
//     issued challenge.
//   - Every rung past the first is logged as a warning.
package challenge

import (
	"context"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordtiles/apps/go-server/internal/letters"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/lexicon"
)

const (
	maxParamAttempts    = 50 // random draws for an unused letter/target
	maxDedupAttempts    = 50 // type switches while the fingerprint is taken
	maxAlternateLetters = 10 // alternate letters tried before relaxing

	// FallbackWord is issued when the tiles spell nothing in the lexicon.
	FallbackWord = "CAT"
)

// baseBank holds the relation targets for relational challenges.
var baseBank = map[Type][]string{
	Rhyme:   {"TIME", "DAY", "LIGHT", "RAIN", "GAME", "STAR"},
	Synonym: {"HAPPY", "ANGRY", "SMALL", "BIG", "FAST", "SMART"},
	Antonym: {"HOT", "DARK", "OLD", "FULL", "HARD", "SLOW"},
}

// RelationSource lists words in relation rel ("rhyme", "synonym", "antonym")
// to target. Failures yield an empty list.
type RelationSource interface {
	Related(ctx context.Context, rel, target string) []string
}

// State is the session view synthesis works from.
type State struct {
	Level   int
	Letters letters.Set
	History *History
}

// Spec asks Build for a specific type. Letter, when set, pins the letter of
// start/end/middle/contains challenges.
type Spec struct {
	Type   Type
	Letter string
}

// Synthesizer builds challenges from the lexicon.
type Synthesizer struct {
	ix        *lexicon.Index
	sel       *Selector
	rng       *rand.Rand
	relations RelationSource
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithRelations enables relational challenge types.
func WithRelations(rs RelationSource) Option {
	return func(s *Synthesizer) { s.relations = rs }
}

// NewSynthesizer wires the lexicon, type selector and random source.
func NewSynthesizer(ix *lexicon.Index, sel *Selector, rng *rand.Rand, opts ...Option) *Synthesizer {
	s := &Synthesizer{ix: ix, sel: sel, rng: rng}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Selector exposes the type rotation.
func (s *Synthesizer) Selector() *Selector { return s.sel }

// Fork returns a Synthesizer over the same lexicon, rotation and relations
// with its own random source seeded from s. Each session owns a fork; Fork
// itself draws from s and needs the same serialization as any other call.
func (s *Synthesizer) Fork() *Synthesizer {
	rng := rand.New(rand.NewPCG(s.rng.Uint64(), s.rng.Uint64()))
	return &Synthesizer{ix: s.ix, sel: NewSelector(rng, s.sel.types), rng: rng, relations: s.relations}
}

// Next selects a type for st and builds a challenge for it.
func (s *Synthesizer) Next(ctx context.Context, st State) Challenge {
	st = normalize(st)
	t, _ := s.choose(ctx, st)
	return s.Build(ctx, Spec{Type: t}, st)
}

// choose picks the type Next builds. The rotation pick stands when a word
// qualifies for it at the level and its fingerprint is free. Otherwise it is
// re-drawn among the rotation-available types, then among all types (a type
// with no answer on these tiles would otherwise stall the rotation), then
// among all types with the length floor lifted. ok is false when nothing
// qualified and start stands in.
func (s *Synthesizer) choose(ctx context.Context, st State) (Type, bool) {
	h := st.History
	stages := []struct {
		types []Type
		floor int
	}{
		{s.sel.Available(h.RecentTypes), RequiredLength(st.Level)},
		{s.sel.Types(), RequiredLength(st.Level)},
		{s.sel.Types(), lexicon.MinWordLength},
	}

	t := s.sel.Pick(h.RecentTypes, h.LastType)
	var taken Type
	for i, stage := range stages {
		cands := stage.types
		if fresh := without(cands, h.LastType); len(fresh) > 0 {
			cands = fresh
		}
		var viable []Type
		for _, c := range cands {
			if s.kindAt(ctx, c, st, stage.floor).viable() {
				viable = append(viable, c)
			}
		}
		if len(viable) == 0 {
			continue
		}

		if !slices.Contains(viable, t) {
			t = s.sel.pickFrom(viable, t)
		}
		for j := 0; j < maxDedupAttempts; j++ {
			if s.kindAt(ctx, t, st, stage.floor).probe() {
				if i > 0 {
					log.Debug().Int("level", st.Level).Str("type", string(t)).
						Msg("challenge type chosen outside the rotation")
				}
				return t, true
			}
			t = s.sel.pickFrom(viable, t)
		}
		if taken == "" {
			taken = t
		}
	}
	if taken != "" {
		return taken, true
	}

	log.Warn().Int("level", st.Level).Str("letters", st.Letters.String()).
		Msg("no challenge type has a qualifying word, falling back to start")
	return Start, false
}

// kindAt is the per-type behavior of a build with the length floor set to floor.
func (s *Synthesizer) kindAt(ctx context.Context, t Type, st State, floor int) kind {
	b := s.newBuild(ctx, t, st)
	b.minLen = floor
	return b.kind
}

// Build synthesizes a challenge of spec.Type. It always returns a challenge.
func (s *Synthesizer) Build(ctx context.Context, spec Spec, st State) Challenge {
	st = normalize(st)
	t := spec.Type
	if !t.Valid() || (t.Relational() && s.relations == nil) {
		log.Warn().Str("type", string(t)).Msg("unsupported challenge type, using start")
		t = Start
	}
	b := s.newBuild(ctx, t, st)
	if spec.Letter != "" && st.Letters.Has(spec.Letter[0]) {
		b.letter = strings.ToUpper(spec.Letter)[0]
	}
	b.kind.prepare()

	for i, r := range b.kind.ladder() {
		c, ok := r.try()
		if !ok || st.History.Issued(c.Fingerprint()) {
			continue
		}
		c.RequiredLength = min(c.RequiredLength, len(c.Solution))
		if i > 0 {
			log.Warn().Str("type", string(t)).Int("level", st.Level).Str("rung", r.name).
				Str("solution", c.Solution).Msg("challenge relaxed")
		}
		log.Debug().Str("type", string(c.Type)).Str("solution", c.Solution).
			Str("fingerprint", c.Fingerprint()).Msg("challenge built")
		return c
	}

	if t.Relational() {
		log.Warn().Str("type", string(t)).Msg("no relational answer on the tiles, using start")
		return s.Build(ctx, Spec{Type: Start}, st)
	}
	return b.fallback()
}

// Preview synthesizes the next n challenges against a copy of the history,
// as if each had been issued and solved at successive levels.
func (s *Synthesizer) Preview(ctx context.Context, st State, n int) []Challenge {
	st = normalize(st)
	h := st.History.Clone()
	out := make([]Challenge, 0, n)
	for i := 1; i <= n; i++ {
		c := s.Next(ctx, State{Level: st.Level + i, Letters: st.Letters, History: h})
		h.Record(c, s.sel.Types())
		h.UsedWords.Add(c.Solution)
		out = append(out, c)
	}
	return out
}

func normalize(st State) State {
	if st.History == nil {
		st.History = NewHistory()
	}
	return st
}

func without(ts []Type, drop Type) []Type {
	out := make([]Type, 0, len(ts))
	for _, t := range ts {
		if t != drop {
			out = append(out, t)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// build: one synthesis attempt for one type

type rung struct {
	name string
	try  func() (Challenge, bool)
}

// kind is the per-type behavior of a build.
type kind interface {
	// probe draws a parameter and reports whether its fingerprint is unused.
	probe() bool
	// viable reports whether any word qualifies under level parameters.
	viable() bool
	// prepare fixes the parameters the ladder starts from.
	prepare()
	// ladder lists the attempts, ideal first.
	ladder() []rung
	// accepts marks words usable by the last-resort rung.
	accepts(e lexicon.Entry) bool
	// derive builds a challenge around an arbitrary word so its rule holds.
	derive(word string) Challenge
}

type build struct {
	s      *Synthesizer
	ctx    context.Context
	st     State
	t      Type
	minLen int
	letter byte
	kind   kind
}

func (s *Synthesizer) newBuild(ctx context.Context, t Type, st State) *build {
	b := &build{s: s, ctx: ctx, st: st, t: t, minLen: RequiredLength(st.Level)}
	switch t {
	case Start:
		b.kind = &positional{b: b, at: lexicon.FirstLetter, query: s.ix.StartingWith}
	case End:
		b.kind = &positional{b: b, at: lexicon.LastLetter, query: s.ix.EndingWith}
	case Middle:
		b.kind = &positional{b: b, at: lexicon.MiddleLetter, query: s.ix.WithMiddle}
	case Vowels:
		b.kind = &vowels{b: b}
	case Contains:
		b.kind = &contains{b: b}
	case Uses:
		b.kind = &uses{b: b}
	case Unique:
		b.kind = &unique{b: b}
	default:
		b.kind = &relational{b: b}
	}
	return b
}

// filter excludes words the player already used, with a length floor.
func (b *build) filter(minLen int) lexicon.Filter {
	return lexicon.Filter{MinLength: minLen, Exclude: b.st.History.UsedWords}
}

func (b *build) pick(es []lexicon.Entry) (lexicon.Entry, bool) { return lexicon.Pick(b.s.rng, es) }

func (b *build) challenge(word string) Challenge {
	return Challenge{Type: b.t, Solution: word, RequiredLength: b.minLen, Theme: ThemeFor(b.t)}
}

func (b *build) randomTile() byte {
	tiles := b.st.Letters
	if len(tiles) == 0 {
		return FallbackWord[0]
	}
	return tiles[b.s.rng.IntN(len(tiles))]
}

// drawLetter draws tiles until fp(letter) is unissued or attempts run out.
func (b *build) drawLetter(fp func(string) string) byte {
	var l byte
	for i := 0; i < maxParamAttempts; i++ {
		l = b.randomTile()
		if !b.st.History.Issued(fp(string(l))) {
			return l
		}
	}
	return l
}

// fallback is the last rung: a word the tiles spell, parameters derived
// from it. The length floor is ignored. Unused words with an unissued
// fingerprint come first, then any unused word; used words only when the
// tiles have nothing else.
func (b *build) fallback() Challenge {
	h := b.st.History
	fresh := func(e lexicon.Entry) bool {
		return b.kind.accepts(e) && !h.Issued(b.kind.derive(e.Word).Fingerprint())
	}
	pools := []func() []lexicon.Entry{
		func() []lexicon.Entry { return b.s.ix.Where(b.st.Letters, b.filter(0), fresh) },
		func() []lexicon.Entry { return b.s.ix.Where(b.st.Letters, b.filter(0), b.kind.accepts) },
		func() []lexicon.Entry { return b.s.ix.Where(b.st.Letters, lexicon.Filter{}, b.kind.accepts) },
	}
	word := FallbackWord
	for _, pool := range pools {
		if e, ok := b.pick(pool()); ok {
			word = e.Word
			break
		}
	}

	c := b.kind.derive(word)
	c.RequiredLength = min(c.RequiredLength, len(word))
	ev := log.Warn()
	if !lexicon.CanBuild(word, b.st.Letters.Counts()) || !Satisfies(c, word) || h.UsedWords.Has(word) {
		ev = log.Error()
	}
	ev.Str("type", string(b.t)).Int("level", b.st.Level).Str("letters", b.st.Letters.String()).
		Str("solution", word).Msg("challenge fell back to global word")
	return c
}

// ---------------------------------------------------------------------------
// start / end / middle

type positional struct {
	b     *build
	at    func(string) byte
	query func(byte, letters.Set, lexicon.Filter) []lexicon.Entry
}

func (k *positional) fp(l string) string { return fingerprint(k.b.t, l, 0, nil, "") }

func (k *positional) probe() bool { return !k.b.st.History.Issued(k.fp(string(k.b.randomTile()))) }

func (k *positional) viable() bool {
	for i := 0; i < len(k.b.st.Letters); i++ {
		if len(k.query(k.b.st.Letters[i], k.b.st.Letters, k.b.filter(k.b.minLen))) > 0 {
			return true
		}
	}
	return false
}

func (k *positional) prepare() {
	if k.b.letter == 0 {
		k.b.letter = k.b.drawLetter(k.fp)
	}
}

func (k *positional) with(l byte, minLen int) (Challenge, bool) {
	e, ok := k.b.pick(k.query(l, k.b.st.Letters, k.b.filter(minLen)))
	if !ok {
		return Challenge{}, false
	}
	c := k.b.challenge(e.Word)
	c.Letter = string(l)
	return c, true
}

func (k *positional) ladder() []rung {
	b := k.b
	return []rung{
		{"letter", func() (Challenge, bool) { return k.with(b.letter, b.minLen) }},
		{"alternate letter", func() (Challenge, bool) {
			for i := 0; i < maxAlternateLetters; i++ {
				l := b.randomTile()
				if l == b.letter || b.st.History.Issued(k.fp(string(l))) {
					continue
				}
				if c, ok := k.with(l, b.minLen); ok {
					return c, true
				}
			}
			return Challenge{}, false
		}},
		{"any tile", func() (Challenge, bool) {
			e, ok := b.pick(b.s.ix.Where(b.st.Letters, b.filter(b.minLen), func(e lexicon.Entry) bool {
				return !b.st.History.Issued(k.fp(string(k.at(e.Word))))
			}))
			if !ok {
				return Challenge{}, false
			}
			return k.derive(e.Word), true
		}},
		{"shorter word", func() (Challenge, bool) { return k.with(b.letter, lexicon.MinWordLength) }},
	}
}

func (k *positional) accepts(lexicon.Entry) bool { return true }

func (k *positional) derive(word string) Challenge {
	c := k.b.challenge(word)
	c.Letter = string(k.at(word))
	return c
}

// ---------------------------------------------------------------------------
// vowels

type vowels struct {
	b     *build
	count int
}

func (k *vowels) probe() bool {
	return !k.b.st.History.Issued(fingerprint(Vowels, "", VowelThreshold(k.b.st.Level), nil, ""))
}

func (k *vowels) viable() bool {
	return len(k.b.s.ix.WithVowels(VowelThreshold(k.b.st.Level), k.b.st.Letters, k.b.filter(k.b.minLen))) > 0
}

func (k *vowels) prepare() { k.count = VowelThreshold(k.b.st.Level) }

func (k *vowels) with(count, minLen int) (Challenge, bool) {
	e, ok := k.b.pick(k.b.s.ix.WithVowels(count, k.b.st.Letters, k.b.filter(minLen)))
	if !ok {
		return Challenge{}, false
	}
	c := k.b.challenge(e.Word)
	c.Count = count
	return c, true
}

func (k *vowels) ladder() []rung {
	b := k.b
	lower := max(1, k.count-1)
	return []rung{
		{"threshold", func() (Challenge, bool) { return k.with(k.count, b.minLen) }},
		{"shorter word", func() (Challenge, bool) { return k.with(k.count, lexicon.MinWordLength) }},
		{"fewer vowels", func() (Challenge, bool) { return k.with(lower, b.minLen) }},
		{"fewer vowels, shorter word", func() (Challenge, bool) { return k.with(lower, lexicon.MinWordLength) }},
		{"any vowel", func() (Challenge, bool) {
			e, ok := b.pick(b.s.ix.WithVowels(1, b.st.Letters, b.filter(0)))
			if !ok {
				return Challenge{}, false
			}
			return k.derive(e.Word), true
		}},
	}
}

func (k *vowels) accepts(e lexicon.Entry) bool { return e.Vowels >= 1 }

func (k *vowels) derive(word string) Challenge {
	c := k.b.challenge(word)
	c.Count = lexicon.VowelCount(word)
	return c
}

// ---------------------------------------------------------------------------
// contains

type contains struct {
	b     *build
	count int
}

func (k *contains) fp(count int) func(string) string {
	return func(l string) string { return fingerprint(Contains, l, count, nil, "") }
}

func (k *contains) probe() bool {
	return !k.b.st.History.Issued(k.fp(ContainsThreshold(k.b.st.Level))(string(k.b.randomTile())))
}

func (k *contains) viable() bool {
	n := ContainsThreshold(k.b.st.Level)
	for i := 0; i < len(k.b.st.Letters); i++ {
		if len(k.b.s.ix.ContainingLetter(k.b.st.Letters[i], n, k.b.st.Letters, k.b.filter(k.b.minLen))) > 0 {
			return true
		}
	}
	return false
}

func (k *contains) prepare() {
	k.count = ContainsThreshold(k.b.st.Level)
	if k.b.letter == 0 {
		k.b.letter = k.b.drawLetter(k.fp(k.count))
	}
}

func (k *contains) with(l byte, count, minLen int) (Challenge, bool) {
	e, ok := k.b.pick(k.b.s.ix.ContainingLetter(l, count, k.b.st.Letters, k.b.filter(minLen)))
	if !ok {
		return Challenge{}, false
	}
	c := k.b.challenge(e.Word)
	c.Letter, c.Count = string(l), count
	return c, true
}

func (k *contains) ladder() []rung {
	b := k.b
	return []rung{
		{"letter", func() (Challenge, bool) { return k.with(b.letter, k.count, b.minLen) }},
		{"alternate letter", func() (Challenge, bool) {
			for i := 0; i < maxAlternateLetters; i++ {
				l := b.randomTile()
				if l == b.letter || b.st.History.Issued(k.fp(k.count)(string(l))) {
					continue
				}
				if c, ok := k.with(l, k.count, b.minLen); ok {
					return c, true
				}
			}
			return Challenge{}, false
		}},
		{"shorter word", func() (Challenge, bool) { return k.with(b.letter, k.count, lexicon.MinWordLength) }},
		{"fewer repeats", func() (Challenge, bool) {
			for n := k.count - 1; n >= 2; n-- {
				for i := 0; i < len(b.st.Letters); i++ {
					if c, ok := k.with(b.st.Letters[i], n, lexicon.MinWordLength); ok {
						return c, true
					}
				}
			}
			return Challenge{}, false
		}},
		{"any repeated letter", func() (Challenge, bool) {
			e, ok := b.pick(b.s.ix.Where(b.st.Letters, b.filter(0), func(e lexicon.Entry) bool {
				_, n := lexicon.MostRepeated(e.Word)
				return n >= 2
			}))
			if !ok {
				return Challenge{}, false
			}
			return k.derive(e.Word), true
		}},
	}
}

func (k *contains) accepts(lexicon.Entry) bool { return true }

func (k *contains) derive(word string) Challenge {
	c := k.b.challenge(word)
	l, n := lexicon.MostRepeated(word)
	c.Letter, c.Count = string(l), n
	return c
}

// ---------------------------------------------------------------------------
// uses

type uses struct {
	b *build
	n int
}

func (k *uses) probe() bool {
	return !k.b.st.History.Issued(fingerprint(Uses, "", 0, k.b.st.Letters.Prefix(UsesCount(k.b.st.Level)), ""))
}

func (k *uses) viable() bool {
	req := k.b.st.Letters.Prefix(UsesCount(k.b.st.Level))
	return len(k.b.s.ix.UsingLetters(req, k.b.st.Letters, k.b.filter(k.b.minLen))) > 0
}

func (k *uses) prepare() { k.n = UsesCount(k.b.st.Level) }

func (k *uses) with(n, minLen int) (Challenge, bool) {
	req := k.b.st.Letters.Prefix(n)
	e, ok := k.b.pick(k.b.s.ix.UsingLetters(req, k.b.st.Letters, k.b.filter(minLen)))
	if !ok {
		return Challenge{}, false
	}
	c := k.b.challenge(e.Word)
	c.Letters = req
	return c, true
}

func (k *uses) ladder() []rung {
	b := k.b
	rungs := []rung{
		{"letters", func() (Challenge, bool) { return k.with(k.n, b.minLen) }},
		{"shorter word", func() (Challenge, bool) { return k.with(k.n, lexicon.MinWordLength) }},
	}
	for n := k.n - 1; n >= 1; n-- {
		rungs = append(rungs,
			rung{"fewer letters", func() (Challenge, bool) { return k.with(n, b.minLen) }},
			rung{"fewer letters, shorter word", func() (Challenge, bool) { return k.with(n, lexicon.MinWordLength) }},
		)
	}
	return rungs
}

func (k *uses) accepts(lexicon.Entry) bool { return true }

func (k *uses) derive(word string) Challenge {
	c := k.b.challenge(word)
	c.Letters = []string{string(word[0])}
	return c
}

// ---------------------------------------------------------------------------
// unique

type unique struct{ b *build }

func (k *unique) probe() bool { return !k.b.st.History.Issued(fingerprint(Unique, "", 0, nil, "")) }

func (k *unique) viable() bool {
	return len(k.b.s.ix.UniqueLetters(k.b.st.Letters, k.b.filter(k.b.minLen))) > 0
}

func (k *unique) prepare() {}

func (k *unique) ladder() []rung {
	b := k.b
	var rungs []rung
	for n := b.minLen; n >= lexicon.MinWordLength; n-- {
		name := "length"
		if n < b.minLen {
			name = "shorter word"
		}
		rungs = append(rungs, rung{name, func() (Challenge, bool) {
			e, ok := b.pick(b.s.ix.UniqueLetters(b.st.Letters, b.filter(n)))
			if !ok {
				return Challenge{}, false
			}
			return b.challenge(e.Word), true
		}})
	}
	return rungs
}

func (k *unique) accepts(e lexicon.Entry) bool { return lexicon.AllDistinct(e.Word) }

func (k *unique) derive(word string) Challenge { return k.b.challenge(word) }

// ---------------------------------------------------------------------------
// rhyme / synonym / antonym

type relational struct {
	b      *build
	target string
}

func (k *relational) fp(target string) string { return fingerprint(k.b.t, "", 0, nil, target) }

func (k *relational) randomTarget() string {
	bank := baseBank[k.b.t]
	if len(bank) == 0 {
		return ""
	}
	return bank[k.b.s.rng.IntN(len(bank))]
}

func (k *relational) probe() bool { return !k.b.st.History.Issued(k.fp(k.randomTarget())) }

func (k *relational) viable() bool { return k.b.s.relations != nil }

func (k *relational) prepare() {
	for i := 0; i < maxParamAttempts; i++ {
		k.target = k.randomTarget()
		if !k.b.st.History.Issued(k.fp(k.target)) {
			return
		}
	}
}

func (k *relational) with(target string) (Challenge, bool) {
	if k.b.s.relations == nil || target == "" {
		return Challenge{}, false
	}
	h := k.b.st.History
	avail := k.b.st.Letters.Counts()
	var found []string
	for _, w := range k.b.s.relations.Related(k.b.ctx, string(k.b.t), strings.ToLower(target)) {
		w = strings.ToUpper(w)
		if len(w) < lexicon.MinWordLength || !lexicon.CanBuild(w, avail) || h.UsedWords.Has(w) || h.UsedSolutions.Has(w) {
			continue
		}
		found = append(found, w)
	}
	if len(found) == 0 {
		return Challenge{}, false
	}
	c := k.b.challenge(found[k.b.s.rng.IntN(len(found))])
	c.Target = target
	c.RequiredLength = lexicon.MinWordLength
	return c, true
}

func (k *relational) ladder() []rung {
	return []rung{
		{"target", func() (Challenge, bool) { return k.with(k.target) }},
		{"alternate target", func() (Challenge, bool) {
			for _, t := range baseBank[k.b.t] {
				if t == k.target || k.b.st.History.Issued(k.fp(t)) {
					continue
				}
				if c, ok := k.with(t); ok {
					return c, true
				}
			}
			return Challenge{}, false
		}},
	}
}

func (k *relational) accepts(lexicon.Entry) bool { return false }

func (k *relational) derive(word string) Challenge { return k.b.challenge(word) }
