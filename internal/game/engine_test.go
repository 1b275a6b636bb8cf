package game

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordtiles/apps/go-server/internal/challenge"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/letters"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/lexicon"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/validate"
)

const tiles = letters.Set("AEICTRSN")

func init() { zerolog.SetGlobalLevel(zerolog.Disabled) }

func newEngine(t *testing.T, checker validate.WordChecker, opts ...Option) *Engine {
	t.Helper()
	ix, err := lexicon.Default()
	require.NoError(t, err)
	if checker == nil {
		checker = validate.Lexicon(ix)
	}
	rng := rand.New(rand.NewPCG(1, 2))
	synth := challenge.NewSynthesizer(ix, challenge.NewSelector(rng, nil), rng)
	return NewEngine(letters.NewGenerator(rng), synth, validate.New(checker), opts...)
}

func TestNewGame(t *testing.T) {
	e := newEngine(t, nil)
	s := e.NewGame(context.Background(), "")
	v := s.View()

	assert.NotEmpty(t, v.ID)
	assert.Zero(t, v.Level)
	assert.True(t, v.Active)
	assert.Len(t, v.Letters, letters.Size)
	assert.NotEmpty(t, v.Challenge.Description)
	assert.Empty(t, v.Challenge.Solution, "solution hidden while playing")
	assert.Len(t, v.Upcoming, DefaultPreview)
	assert.True(t, s.History.Issued(s.Current.Fingerprint()))

	fixed := e.NewGame(context.Background(), tiles)
	assert.Equal(t, tiles, fixed.Letters)
	assert.NotEqual(t, s.ID, fixed.ID)
}

func TestSubmitSolutionAdvances(t *testing.T) {
	e := newEngine(t, nil)
	s := e.NewGame(context.Background(), tiles)
	first := s.Current

	verdict, v, err := e.Submit(context.Background(), s, strings.ToLower(first.Solution))
	require.NoError(t, err)
	require.True(t, verdict.OK, verdict.Reason)
	assert.Equal(t, 1, v.Level)
	assert.Contains(t, v.UsedWords, first.Solution)
	assert.NotEqual(t, first.Fingerprint(), s.Current.Fingerprint())
	assert.NotEqual(t, first.Type, s.Current.Type)

	verdict, v, err = e.Submit(context.Background(), s, first.Solution)
	require.NoError(t, err)
	assert.False(t, verdict.OK)
	assert.ErrorIs(t, verdict.Err, validate.ErrAlreadyUsed)
	assert.Equal(t, 1, v.Level)
}

func TestSubmitRejections(t *testing.T) {
	e := newEngine(t, nil)
	s := e.NewGame(context.Background(), tiles)

	verdict, v, err := e.Submit(context.Background(), s, "AT")
	require.NoError(t, err)
	assert.Equal(t, "Need 3+ letters", verdict.Reason)
	assert.Zero(t, v.Level)

	verdict, _, err = e.Submit(context.Background(), s, "DOG")
	require.NoError(t, err)
	assert.Equal(t, "Use provided letters only", verdict.Reason)
}

func TestRevealEndsPlay(t *testing.T) {
	e := newEngine(t, nil)
	s := e.NewGame(context.Background(), tiles)
	sol := s.Current.Solution

	msg, v, err := e.Reveal(s)
	require.NoError(t, err)
	assert.Equal(t, "Answer: "+sol, msg)
	assert.False(t, v.Active)
	assert.Equal(t, sol, v.Challenge.Solution)

	_, _, err = e.Submit(context.Background(), s, sol)
	assert.ErrorIs(t, err, ErrInactive)
	_, _, err = e.Reveal(s)
	assert.ErrorIs(t, err, ErrInactive)
}

func TestRevealFlagsBrokenSolution(t *testing.T) {
	e := newEngine(t, nil)
	s := e.NewGame(context.Background(), tiles)
	s.Current = challenge.Challenge{Type: challenge.Start, Letter: "C", Solution: "RAT"}

	msg, _, err := e.Reveal(s)
	require.NoError(t, err)
	assert.Equal(t, "Answer: RAT (should start with C) - Invalid solution!", msg)
}

func TestRestart(t *testing.T) {
	e := newEngine(t, nil)
	s := e.NewGame(context.Background(), tiles)
	_, _, err := e.Submit(context.Background(), s, s.Current.Solution)
	require.NoError(t, err)
	_, _, err = e.Reveal(s)
	require.NoError(t, err)

	v := e.Restart(context.Background(), s)
	assert.True(t, v.Active)
	assert.Zero(t, v.Level)
	assert.Empty(t, v.UsedWords)
	assert.Empty(t, v.Message)
	assert.Equal(t, tiles.Letters(), v.Letters, "fixed tiles survive a restart")
}

func TestStaleVerdictIsDropped(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	slow := validate.CheckerFunc(func(context.Context, string) bool {
		close(entered)
		<-release
		return true
	})
	e := newEngine(t, slow)
	s := e.NewGame(context.Background(), tiles)
	sol := s.Current.Solution

	type result struct {
		v   validate.Verdict
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, _, err := e.Submit(context.Background(), s, sol)
		done <- result{v, err}
	}()

	<-entered
	_, _, err := e.Reveal(s)
	require.NoError(t, err)
	close(release)

	select {
	case r := <-done:
		assert.ErrorIs(t, r.err, ErrStale)
		assert.True(t, r.v.OK)
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not return")
	}
	assert.Zero(t, s.View().Level)
}

func TestPreviewSize(t *testing.T) {
	e := newEngine(t, nil, WithPreview(0))
	s := e.NewGame(context.Background(), tiles)
	assert.Empty(t, s.View().Upcoming)
}

func TestClock(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	e := newEngine(t, nil, WithClock(func() time.Time { return at }))
	s := e.NewGame(context.Background(), tiles)
	assert.Equal(t, at, s.CreatedAt)
	assert.Equal(t, at, s.UpdatedAt)
}

func TestPlayThroughRandomTiles(t *testing.T) {
	e := newEngine(t, nil)
	ix, err := lexicon.Default()
	require.NoError(t, err)

	for game := 0; game < 25; game++ {
		s := e.NewGame(context.Background(), "")
		for level := 0; level < 30; level++ {
			unused := ix.Buildable(s.Letters, lexicon.Filter{Exclude: s.History.UsedWords})
			if len(unused) == 0 {
				// Every word on the tiles has been played.
				break
			}
			c := s.Current
			verdict, v, err := e.Submit(context.Background(), s, c.Solution)
			require.NoError(t, err)
			require.True(t, verdict.OK, "game %d level %d tiles %s: %s for %+v: %s",
				game, level, s.Letters, c.Solution, c, verdict.Reason)
			require.Equal(t, level+1, v.Level)
		}
	}
}

// gatedRelations blocks the first lookup until release is closed.
type gatedRelations struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRelations) Related(context.Context, string, string) []string {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return []string{"crane", "rain", "train", "stain", "cart", "rice"}
}

func TestSlowLookupDoesNotBlockOtherSessions(t *testing.T) {
	ix, err := lexicon.Default()
	require.NoError(t, err)
	rel := &gatedRelations{entered: make(chan struct{}), release: make(chan struct{})}
	rng := rand.New(rand.NewPCG(3, 4))
	synth := challenge.NewSynthesizer(ix, challenge.NewSelector(rng, []challenge.Type{challenge.Rhyme}), rng,
		challenge.WithRelations(rel))
	e := NewEngine(letters.NewGenerator(rng), synth, validate.New(validate.Lexicon(ix)))

	first := make(chan *Session, 1)
	go func() { first <- e.NewGame(context.Background(), tiles) }()
	<-rel.entered

	second := make(chan *Session, 1)
	go func() { second <- e.NewGame(context.Background(), tiles) }()
	select {
	case s := <-second:
		assert.Equal(t, challenge.Rhyme, s.Current.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("second game waited on the first game's lookup")
	}

	close(rel.release)
	select {
	case s := <-first:
		assert.Equal(t, challenge.Rhyme, s.Current.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("first game did not finish")
	}
}
