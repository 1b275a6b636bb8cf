package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordtiles/apps/go-server/internal/letters"
)

func TestDateKeyIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	assert.Equal(t, "2024-02-29", DateKey(time.Date(2024, 3, 1, 8, 0, 0, 0, loc)))
}

func TestLettersStableForADay(t *testing.T) {
	morning := time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)

	a := Letters(morning, "salt")
	assert.Equal(t, a, Letters(evening, "salt"))
	_, err := letters.Parse(string(a))
	require.NoError(t, err)

	seen := map[letters.Set]bool{}
	for d := 0; d < 10; d++ {
		seen[Letters(morning.AddDate(0, 0, d), "salt")] = true
	}
	assert.Greater(t, len(seen), 1)

	a1, b1 := Seed(morning, "salt")
	a2, b2 := Seed(morning, "pepper")
	assert.False(t, a1 == a2 && b1 == b2)
}
