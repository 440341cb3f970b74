// Package cache implements the build cache: a content-addressed store
// mapping (source hash, emit mode, compiler version) to previously
// transformed output, backed by modernc.org/sqlite through database/sql —
// the same pure-Go driver wiring the teacher uses for its SQL builtins.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/spicelang/spicec/internal/config"
)

// Cache is a sqlite-backed build cache. It is safe for use by a single
// driver process compiling many units sequentially.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS build_cache (
		source_hash TEXT NOT NULL,
		emit_mode TEXT NOT NULL,
		compiler_version TEXT NOT NULL,
		output TEXT NOT NULL,
		PRIMARY KEY (source_hash, emit_mode, compiler_version)
	)`); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// HashSource computes the content-address key for a unit's source text.
func HashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Lookup returns cached output for the given source hash and emit mode, or
// ("", false) on a miss.
func (c *Cache) Lookup(sourceHash string, emit config.EmitMode) (string, bool) {
	var output string
	err := c.db.QueryRow(
		`SELECT output FROM build_cache WHERE source_hash = ? AND emit_mode = ? AND compiler_version = ?`,
		sourceHash, string(emit), config.Version,
	).Scan(&output)
	if err != nil {
		return "", false
	}
	return output, true
}

// Store records transformed output for later Lookup calls.
func (c *Cache) Store(sourceHash string, emit config.EmitMode, output string) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO build_cache (source_hash, emit_mode, compiler_version, output) VALUES (?, ?, ?, ?)`,
		sourceHash, string(emit), config.Version, output,
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}
