// internal/game/engine.go
//
// Session controller for word-tile games.
// Responsibilities:
//   - Create games: deal tiles (or accept a fixed set), issue the first challenge.
//   - Apply submissions: validate, then advance the level and issue the next challenge.
//   - Reveal the current answer (checked against its own rule) and end play.
//   - Restart with a fresh history.
//
// Notes:
//   - Validation may block on network lookups, so it runs outside the session
//     lock. Each transition bumps Session.Round; a verdict computed in an
//     older round is dropped with ErrStale.
//   - Each session synthesizes with its own fork of the Synthesizer, so a slow
//     relation lookup only holds up that session. Engine.mu guards the shared
//     Generator and the forking.
package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordtiles/apps/go-server/internal/challenge"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/letters"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/validate"
)

// DefaultPreview is how many upcoming challenges a session shows.
const DefaultPreview = 2

var (
	ErrInactive = errors.New("game over, start a new game")
	ErrStale    = errors.New("game changed while the word was being checked")
)

// Engine creates and advances sessions.
type Engine struct {
	gen       *letters.Generator
	synth     *challenge.Synthesizer
	validator *validate.Validator
	preview   int
	now       func() time.Time

	mu sync.Mutex // guards gen and synth; sessions use forks of synth
}

// Option configures an Engine.
type Option func(*Engine)

// WithPreview sets how many upcoming challenges are synthesized.
func WithPreview(n int) Option {
	return func(e *Engine) { e.preview = max(n, 0) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires the tile generator, synthesizer and validator.
func NewEngine(gen *letters.Generator, synth *challenge.Synthesizer, v *validate.Validator, opts ...Option) *Engine {
	e := &Engine{gen: gen, synth: synth, validator: v, preview: DefaultPreview, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// NewGame starts a session. An empty fixed set deals random tiles.
func (e *Engine) NewGame(ctx context.Context, fixed letters.Set) *Session {
	now := e.now()
	s := &Session{ID: uuid.NewString(), CreatedAt: now}
	e.mu.Lock()
	s.synth = e.synth.Fork()
	e.mu.Unlock()
	e.reset(ctx, s, fixed)
	log.Info().Str("session", s.ID).Str("letters", s.Letters.String()).
		Str("challenge", string(s.Current.Type)).Msg("game started")
	return s
}

// Restart begins a new game in the same session. Caller-fixed tiles are kept;
// otherwise new tiles are dealt.
func (e *Engine) Restart(ctx context.Context, s *Session) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	var fixed letters.Set
	if s.Fixed {
		fixed = s.Letters
	}
	e.reset(ctx, s, fixed)
	log.Info().Str("session", s.ID).Str("letters", s.Letters.String()).Msg("game restarted")
	return s.view()
}

// reset reinitializes s. Callers hold s.mu unless s is not yet shared.
func (e *Engine) reset(ctx context.Context, s *Session, fixed letters.Set) {
	s.Fixed = fixed != ""
	if s.Fixed {
		s.Letters = fixed
	} else {
		e.mu.Lock()
		s.Letters = e.gen.New()
		e.mu.Unlock()
	}
	s.Level = 0
	s.Active = true
	s.Message = ""
	s.History = challenge.NewHistory()
	s.Round++
	e.issue(ctx, s)
}

// issue synthesizes and records the challenge for s.Level and refreshes the
// upcoming queue.
func (e *Engine) issue(ctx context.Context, s *Session) {
	st := challenge.State{Level: s.Level, Letters: s.Letters, History: s.History}
	c := s.synth.Next(ctx, st)
	s.History.Record(c, s.synth.Selector().Types())
	s.Upcoming = s.synth.Preview(ctx, st, e.preview)
	s.Current = c
	s.UpdatedAt = e.now()
	log.Debug().Str("session", s.ID).Int("level", s.Level).Str("type", string(c.Type)).
		Str("fingerprint", c.Fingerprint()).Msg("challenge issued")
}

// Submit validates word against the current challenge. A passing word is
// recorded, the level goes up and the next challenge is issued. The verdict
// is returned with a nil error for both pass and fail; errors mean the
// submission was not evaluated against the live game.
func (e *Engine) Submit(ctx context.Context, s *Session, word string) (validate.Verdict, View, error) {
	s.mu.Lock()
	if !s.Active {
		v := s.view()
		s.mu.Unlock()
		return validate.Verdict{}, v, ErrInactive
	}
	round := s.Round
	c, set, used := s.Current, s.Letters, s.History.UsedWords.Clone()
	s.mu.Unlock()

	verdict := e.validator.Validate(ctx, word, c, set, used)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Round != round {
		log.Debug().Str("session", s.ID).Str("word", verdict.Word).Msg("stale verdict dropped")
		return verdict, s.view(), ErrStale
	}
	if !verdict.OK {
		log.Debug().Str("session", s.ID).Str("word", verdict.Word).Str("reason", verdict.Reason).Msg("submission rejected")
		return verdict, s.view(), nil
	}

	s.History.UsedWords.Add(verdict.Word)
	s.Level++
	s.Round++
	s.Message = ""
	log.Info().Str("session", s.ID).Str("word", verdict.Word).Int("level", s.Level).Msg("challenge solved")
	e.issue(ctx, s)
	return verdict, s.view(), nil
}

// Reveal shows the current solution and ends play. A solution that breaks
// its own rule is annotated and logged as a generator inconsistency.
func (e *Engine) Reveal(s *Session) (string, View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Active {
		return s.Message, s.view(), ErrInactive
	}

	msg := "Answer: " + s.Current.Solution
	if ok, note := challenge.Verify(s.Current); !ok {
		msg += " " + note + " - Invalid solution!"
		log.Error().Str("session", s.ID).Str("type", string(s.Current.Type)).
			Str("solution", s.Current.Solution).Str("letters", s.Letters.String()).
			Msg("revealed solution does not meet its challenge")
	}
	s.Active = false
	s.Round++
	s.Message = msg
	s.UpdatedAt = e.now()
	return msg, s.view(), nil
}
