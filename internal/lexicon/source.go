// internal/lexicon/source.go
//
// Loading the lexicon frequency table.
//
// Sources:
//   1. LoadFile: a TSV file configured via LEXICON_FILE.
//   2. Default: the table embedded in the assets package.
//   (The SQLite source lives in internal/lexstore and feeds New directly.)
//
// Format:
//   word<TAB>frequency, one per line. Blank lines and lines starting with '#'
//   are skipped. A line with only a word gets frequency 0. Whitespace other than
//   a tab is accepted as separator.
package lexicon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordtiles/apps/go-server/assets"
)

// ErrEmpty is returned when a source yields no usable words.
var ErrEmpty = errors.New("lexicon: no usable words")

var (
	defaultOnce sync.Once
	defaultIx   *Index
	defaultErr  error
)

// Default returns the index built from the embedded table. It is built once.
func Default() (*Index, error) {
	defaultOnce.Do(func() {
		rc, err := assets.Lexicon()
		if err != nil {
			defaultErr = err
			return
		}
		defer rc.Close()
		defaultIx, defaultErr = FromReader(rc, "embedded")
	})
	return defaultIx, defaultErr
}

// LoadFile builds an index from a TSV file on disk.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return FromReader(f, path)
}

// FromReader parses a TSV table and builds an index. name only labels logs.
func FromReader(r io.Reader, name string) (*Index, error) {
	freqs, err := ParseTSV(r)
	if err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", name, err)
	}
	ix := New(freqs)
	if ix.Len() == 0 {
		return nil, ErrEmpty
	}
	st := ix.Stats()
	log.Info().Str("source", name).Int("words", st.Words).
		Interface("byLength", st.ByLength).Msg("lexicon loaded")
	return ix, nil
}

// ParseTSV reads word/frequency lines into a table. Words are lowercased and
// a word listed twice keeps its highest frequency; filtering by length and
// alphabet happens in New.
func ParseTSV(r io.Reader) (map[string]float64, error) {
	out := make(map[string]float64)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		fields := strings.Fields(s)
		freq := 0.0
		if len(fields) > 1 {
			f, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad frequency %q", line, fields[1])
			}
			freq = f
		}
		w := strings.ToLower(fields[0])
		if old, ok := out[w]; !ok || freq > old {
			out[w] = freq
		}
	}
	return out, sc.Err()
}
