// main.go
//
// Process wiring for the word-tile server:
// config → logging → lexicon → oracles → engine → session store → HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordtiles/apps/go-server/assets"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/challenge"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/config"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/game"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/httpserver"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/letters"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/lexicon"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/lexstore"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/oracle"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/store"
	"github.com/robalobadob/wordtiles/apps/go-server/internal/validate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.JWTSecret == config.DevSecret {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ix, err := loadLexicon(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load lexicon")
	}
	st := ix.Stats()
	log.Info().Int("words", st.Words).Interface("byLength", st.ByLength).Msg("lexicon ready")

	orc := oracle.New(oracle.Config{
		DictionaryURL: cfg.DictionaryURL,
		DatamuseURL:   cfg.DatamuseURL,
		Timeout:       cfg.OracleTimeout,
		MinFrequency:  cfg.OracleMinFrequency,
	})

	words := validate.Lexicon(ix)
	if cfg.RemoteWordCheck {
		words = validate.AnyOf(words, orc)
	}
	types := challenge.DefaultTypes
	var synthOpts []challenge.Option
	var validOpts []validate.Option
	if cfg.RelationalChallenges {
		types = append(append([]challenge.Type(nil), challenge.DefaultTypes...), challenge.RelationalTypes...)
		synthOpts = append(synthOpts, challenge.WithRelations(orc))
		validOpts = append(validOpts, validate.WithRelations(orc))
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	letterOpts := []letters.Option{letters.WithRepeats(cfg.LettersAllowRepeats)}
	eng := game.NewEngine(
		letters.NewGenerator(rng, letterOpts...),
		challenge.NewSynthesizer(ix, challenge.NewSelector(rng, types), rng, synthOpts...),
		validate.New(words, validOpts...),
	)

	tokens, err := httpserver.NewTokens(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("session tokens")
	}
	mem := store.NewMemory(cfg.SessionTTL)
	go mem.Run(ctx, time.Minute)

	srv := httpserver.New(eng, mem, ix, tokens, httpserver.Options{
		ClientOrigin:  cfg.ClientOrigin,
		CookieName:    cfg.CookieName,
		SecureCookies: cfg.SecureCookies,
		DailySalt:     cfg.DailySalt,
		LetterOptions: letterOpts,
	})
	log.Info().Str("addr", cfg.Addr()).Bool("relational", cfg.RelationalChallenges).
		Bool("remoteWordCheck", cfg.RemoteWordCheck).Msg("starting go-server")
	if err := srv.Start(ctx, cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

// loadLexicon picks the lexicon source: LEXICON_DB (seeded from LEXICON_FILE
// or the embedded table when empty), else LEXICON_FILE, else the embedded table.
func loadLexicon(ctx context.Context, cfg config.Config) (*lexicon.Index, error) {
	switch {
	case cfg.LexiconDB != "":
		db, err := lexstore.Open(cfg.LexiconDB)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.LexiconDB, err)
		}
		defer db.Close()

		seed, err := seedTable(cfg.LexiconFile)
		if err != nil {
			return nil, err
		}
		if _, err := db.Seed(ctx, seed); err != nil {
			return nil, fmt.Errorf("seed %s: %w", cfg.LexiconDB, err)
		}
		freqs, err := db.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", cfg.LexiconDB, err)
		}
		ix := lexicon.New(freqs)
		if ix.Len() == 0 {
			return nil, lexicon.ErrEmpty
		}
		return ix, nil
	case cfg.LexiconFile != "":
		return lexicon.LoadFile(cfg.LexiconFile)
	default:
		return lexicon.Default()
	}
}

func seedTable(path string) (map[string]float64, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return lexicon.ParseTSV(f)
	}
	rc, err := assets.Lexicon()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return lexicon.ParseTSV(rc)
}
