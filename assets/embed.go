// Package assets embeds the static data the server ships with:
// the default lexicon frequency table and the SQLite migrations used when
// the lexicon is served from a database.
package assets

import (
	"embed"
	"io"
	"io/fs"
)

//go:embed lexicon.tsv migrations/*.sql
var FS embed.FS

// Lexicon opens the embedded word/frequency table.
func Lexicon() (io.ReadCloser, error) {
	return FS.Open("lexicon.tsv")
}

// Migrations returns the embedded migrations directory rooted at "migrations".
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "migrations")
	if err != nil {
		// The directory is part of the embed pattern above.
		panic(err)
	}
	return sub
}
