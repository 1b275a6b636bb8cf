// Package daily derives the tile set of the daily puzzle: every player who
// starts a daily game on the same UTC date gets the same tiles.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"

	"github.com/robalobadob/wordtiles/apps/go-server/internal/letters"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic PCG seed for a date using HMAC(salt, YYYY-MM-DD).
func Seed(date time.Time, salt string) (uint64, uint64) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}

// Letters deals the day's tiles.
func Letters(date time.Time, salt string, opts ...letters.Option) letters.Set {
	rng := rand.New(rand.NewPCG(Seed(date, salt)))
	return letters.NewGenerator(rng, opts...).New()
}
