// internal/config/config.go
//
// Typed server configuration.
// A .env file in the working directory is loaded first when present, then
// environment variables are parsed into Config. Unset variables take the
// defaults below.
//
// Environment variables:
//   PORT=5175                     listen port
//   LOG_LEVEL=info                zerolog level name
//   CLIENT_ORIGIN=http://localhost:5173   allowed CORS origin
//   JWT_SECRET=...                secret the session-token key is derived from
//   COOKIE_NAME=wordtiles_session session cookie name
//   SECURE_COOKIES=false          Secure + SameSite=None cookies (production)
//   DAILY_SALT=...                salt for the daily tile set
//   SESSION_TTL=24h               idle sessions are dropped after this long
//   LEXICON_FILE=/path/words.tsv  word<TAB>frequency table on disk
//   LEXICON_DB=./data/lexicon.db  SQLite lexicon (seeded from the embedded table)
//   REMOTE_WORD_CHECK=false       also ask the dictionary API for unknown words
//   DICTIONARY_URL, DATAMUSE_URL  oracle endpoints
//   ORACLE_TIMEOUT=3s             per-lookup timeout
//   ORACLE_MIN_FREQUENCY=2        relation results below this f: tag are dropped
//   RELATIONAL_CHALLENGES=false   enable rhyme/synonym/antonym challenges
//   LETTERS_ALLOW_REPEATS=false   deal tiles with repeated letters
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// DevSecret is the JWT secret used when none is configured.
const DevSecret = "dev_secret_change_me"

// Config is the full server configuration.
type Config struct {
	Port          string        `env:"PORT" envDefault:"5175"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	ClientOrigin  string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	CookieName    string        `env:"COOKIE_NAME" envDefault:"wordtiles_session"`
	SecureCookies bool          `env:"SECURE_COOKIES" envDefault:"false"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	DailySalt     string        `env:"DAILY_SALT" envDefault:"local_dev_salt"`

	LexiconFile string `env:"LEXICON_FILE"`
	LexiconDB   string `env:"LEXICON_DB"`

	RemoteWordCheck    bool          `env:"REMOTE_WORD_CHECK" envDefault:"false"`
	DictionaryURL      string        `env:"DICTIONARY_URL" envDefault:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	DatamuseURL        string        `env:"DATAMUSE_URL" envDefault:"https://api.datamuse.com/words"`
	OracleTimeout      time.Duration `env:"ORACLE_TIMEOUT" envDefault:"3s"`
	OracleMinFrequency float64       `env:"ORACLE_MIN_FREQUENCY" envDefault:"2"`

	RelationalChallenges bool `env:"RELATIONAL_CHALLENGES" envDefault:"false"`
	LettersAllowRepeats  bool `env:"LETTERS_ALLOW_REPEATS" envDefault:"false"`
}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads Config from the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("parse env: SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return cfg, nil
}

// Level is the configured zerolog level, info when unparseable.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }
