// Package promptcache is the optional local side-store for prompt content.
//
// It decorates the gateway's read path: try the cache, fall through to the
// store, repopulate. The cache is advisory only. It is never consulted for
// version numbering or any other correctness decision, and every cache
// failure degrades to a direct store read instead of surfacing.
package promptcache

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
)

// Cache is a TTL'd key-value store on a local SQLite file.
type Cache struct {
	db     *sql.DB
	ttl    time.Duration
	logger *slog.Logger
}

// Open creates (or reuses) the cache database at path. A ttl of zero or
// less disables expiry.
func Open(path string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("promptcache: create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("promptcache: open %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("promptcache: exec %q: %w", pragma, err)
		}
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS prompt_cache (
		key        TEXT PRIMARY KEY,
		body       BLOB NOT NULL,
		etag       TEXT NOT NULL DEFAULT '',
		fetched_at INTEGER NOT NULL -- unix nanos
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("promptcache: create schema: %w", err)
	}

	return &Cache{db: db, ttl: ttl, logger: logger}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// lookup returns a fresh cached object. Expired rows are dropped on the
// way out; any error counts as a miss.
func (c *Cache) lookup(key string) (objstore.Object, bool) {
	var body []byte
	var etag string
	var fetchedAt int64
	err := c.db.QueryRow(
		`SELECT body, etag, fetched_at FROM prompt_cache WHERE key = ?`, key,
	).Scan(&body, &etag, &fetchedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			c.logger.Debug("promptcache: lookup failed", "key", key, "error", err)
		}
		return objstore.Object{}, false
	}

	if c.ttl > 0 && time.Since(time.Unix(0, fetchedAt)) > c.ttl {
		if _, err := c.db.Exec(`DELETE FROM prompt_cache WHERE key = ?`, key); err != nil {
			c.logger.Debug("promptcache: evict failed", "key", key, "error", err)
		}
		return objstore.Object{}, false
	}
	return objstore.Object{Key: key, Body: body, ETag: etag}, true
}

// store records a freshly fetched object. Best effort.
func (c *Cache) store(obj objstore.Object) {
	_, err := c.db.Exec(
		`INSERT INTO prompt_cache (key, body, etag, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, etag = excluded.etag, fetched_at = excluded.fetched_at`,
		obj.Key, obj.Body, obj.ETag, time.Now().UnixNano(),
	)
	if err != nil {
		c.logger.Debug("promptcache: store failed", "key", obj.Key, "error", err)
	}
}

// invalidate drops one key. Best effort.
func (c *Cache) invalidate(key string) {
	if _, err := c.db.Exec(`DELETE FROM prompt_cache WHERE key = ?`, key); err != nil {
		c.logger.Debug("promptcache: invalidate failed", "key", key, "error", err)
	}
}
