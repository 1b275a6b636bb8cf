// internal/challenge/selector.go
//
// Challenge type rotation.
//
// Rules:
//   - Candidates are the types not yet in the rotation buffer; once every type
//     has been used the full set is available again.
//   - The previous type is never picked twice in a row unless it is the only
//     candidate.
//   - After a pick the type joins the buffer; when the buffer covers every type
//     it restarts with just the picked type.
package challenge

import (
	"math/rand/v2"
	"slices"
)

// Selector picks the next challenge type.
type Selector struct {
	rng   *rand.Rand
	types []Type
}

// NewSelector returns a selector over types (DefaultTypes when empty).
func NewSelector(rng *rand.Rand, types []Type) *Selector {
	if len(types) == 0 {
		types = DefaultTypes
	}
	return &Selector{rng: rng, types: slices.Clone(types)}
}

// Types is the full rotation.
func (s *Selector) Types() []Type { return s.types }

// Available returns the rotation candidates given the buffer.
func (s *Selector) Available(recent []Type) []Type {
	var out []Type
	for _, t := range s.types {
		if !slices.Contains(recent, t) {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return slices.Clone(s.types)
	}
	return out
}

// Pick chooses the next type given the rotation buffer and the previous type.
func (s *Selector) Pick(recent []Type, last Type) Type {
	return s.pickFrom(s.Available(recent), last)
}

func (s *Selector) pickFrom(candidates []Type, avoid Type) Type {
	pool := make([]Type, 0, len(candidates))
	for _, t := range candidates {
		if t != avoid {
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		pool = candidates
	}
	return pool[s.rng.IntN(len(pool))]
}

// Rotate adds chosen to the buffer and restarts it once every type in all
// has been seen. A type already in the buffer is not added twice.
func Rotate(buffer []Type, chosen Type, all []Type) []Type {
	next := slices.Clone(buffer)
	if !slices.Contains(next, chosen) {
		next = append(next, chosen)
	}
	for _, t := range all {
		if !slices.Contains(next, t) {
			return next
		}
	}
	return []Type{chosen}
}
