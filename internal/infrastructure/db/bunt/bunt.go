// Package bunt implements the record store ports on a buntdb single-file
// database: the per-device storage variant. Records are JSON values under
// prefixed keys, so the whole store remains inspectable with a text editor.
package bunt

import (
	"fmt"

	"github.com/tidwall/buntdb"
)

// Open opens (or creates) the local store at path. Use ":memory:" in tests.
func Open(path string) (*buntdb.DB, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return db, nil
}
