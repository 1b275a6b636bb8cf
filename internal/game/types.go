// internal/game/types.go
//
// Session state for one word-tile game.
// Defines:
//   - Session: tiles, level, current and upcoming challenges, history.
//   - View: the JSON snapshot returned to clients.

package game

import (
	"slices"
	"sync"
	"time"

	"github.com/robalobadob/wordtiles/apps/go-server/internal/challenge"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/letters"
)

// Session holds the state of a single game. All fields are guarded by mu;
// use the Engine to change them and View to read them.
type Session struct {
	ID      string      // uuid
	Level   int         // solved challenges so far; starts at 0
	Active  bool        // false once the answer is revealed
	Letters letters.Set // dealt tiles, fixed for the game
	Fixed   bool        // tiles were supplied by the caller; Restart keeps them
	Message string      // last reveal text

	Current  challenge.Challenge
	Upcoming []challenge.Challenge
	History  *challenge.History

	// Round changes on every state transition. Validation started in an
	// older round is discarded.
	Round uint64

	CreatedAt time.Time
	UpdatedAt time.Time

	synth *challenge.Synthesizer // this session's fork
	mu    sync.Mutex
}

// ChallengeView is a challenge plus its prompt text.
type ChallengeView struct {
	challenge.Challenge
	Description string `json:"description"`
}

// View is a point-in-time copy of a session, safe to serialize.
type View struct {
	ID        string          `json:"id"`
	Level     int             `json:"level"`
	Active    bool            `json:"active"`
	Letters   []string        `json:"letters"`
	Challenge ChallengeView   `json:"challenge"`
	Upcoming  []ChallengeView `json:"upcoming"`
	UsedWords []string        `json:"usedWords"`
	Message   string          `json:"message,omitempty"`
}

func viewOf(c challenge.Challenge) ChallengeView {
	return ChallengeView{Challenge: c, Description: challenge.Describe(c)}
}

// View snapshots the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	v := View{
		ID:        s.ID,
		Level:     s.Level,
		Active:    s.Active,
		Letters:   s.Letters.Letters(),
		Challenge: viewOf(s.Current),
		Upcoming:  make([]ChallengeView, 0, len(s.Upcoming)),
		UsedWords: make([]string, 0, len(s.History.UsedWords)),
		Message:   s.Message,
	}
	// The solution stays server-side until reveal.
	if s.Active {
		v.Challenge.Solution = ""
	}
	for _, c := range s.Upcoming {
		cv := viewOf(c)
		cv.Solution = ""
		v.Upcoming = append(v.Upcoming, cv)
	}
	for w := range s.History.UsedWords {
		v.UsedWords = append(v.UsedWords, w)
	}
	slices.Sort(v.UsedWords)
	return v
}
