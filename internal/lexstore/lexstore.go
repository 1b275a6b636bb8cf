// internal/lexstore/lexstore.go
//
// SQLite-backed lexicon source (LEXICON_DB).
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout).
//   - Applying the embedded migrations (idempotent, recorded in _migrations).
//   - Seeding the lexicon table from the embedded frequency table when empty.
//   - Loading word frequencies for lexicon.New.
package lexstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordtiles/apps/go-server/assets"
)

// Store wraps the lexicon database.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if missing) the SQLite file at dsn and applies migrations.
func Open(dsn string) (*Store, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := migrate(db, assets.Migrations()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// migrate applies every *.sql file in migrations, in lexical order, each in
// its own transaction. Applied names are kept in _migrations.
func migrate(db *sql.DB, migrations fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := fs.ReadFile(migrations, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Count is the number of stored words.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM lexicon`).Scan(&n)
	return n, err
}

// Upsert writes word frequencies, replacing existing rows. Words are stored
// lowercase; negative frequencies are clamped to 0.
func (s *Store) Upsert(ctx context.Context, freqs map[string]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO lexicon(word, frequency) VALUES (?, ?)
        ON CONFLICT(word) DO UPDATE SET frequency=excluded.frequency`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for w, f := range freqs {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, w, max(f, 0)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert %s: %w", w, err)
		}
	}
	return tx.Commit()
}

// Seed fills an empty lexicon table with freqs. A populated table is left alone.
func (s *Store) Seed(ctx context.Context, freqs map[string]float64) (bool, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := s.Upsert(ctx, freqs); err != nil {
		return false, err
	}
	log.Info().Int("words", len(freqs)).Msg("lexicon table seeded")
	return true, nil
}

// Load reads every stored word with its frequency.
func (s *Store) Load(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word, frequency FROM lexicon`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var (
			w string
			f float64
		)
		if err := rows.Scan(&w, &f); err != nil {
			return nil, err
		}
		out[w] = f
	}
	return out, rows.Err()
}
