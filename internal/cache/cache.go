// Package cache is a file-backed JSON response cache keyed by call
// fingerprints. A nil *Cache disables caching, so callers never branch.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Cache stores JSON payloads as individual files under a directory.
type Cache struct {
	dir string
}

// New creates a cache rooted at dir. The directory is created on first write.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key builds a deterministic cache key from the parts identifying a call.
func Key(parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		// Key parts are plain values; marshal failure means a programming error.
		panic(fmt.Sprintf("cache: unmarshalable key part: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Read loads the cached value for key into out. ok is false on miss.
func (c *Cache) Read(key string, out any) bool {
	if c == nil {
		return false
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// Write stores v under key.
func (c *Cache) Write(key string, v any) error {
	if c == nil {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	return os.WriteFile(c.path(key), data, 0o600)
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			n++
		}
	}
	return n
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// ReadOrFetch returns the cached value for key, calling fetch and storing its
// result on a miss. Fetch errors are returned uncached.
func ReadOrFetch[T any](c *Cache, key string, fetch func() (T, error)) (T, error) {
	var v T
	if c.Read(key, &v) {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return v, err
	}
	if err := c.Write(key, v); err != nil {
		return v, err
	}
	return v, nil
}
