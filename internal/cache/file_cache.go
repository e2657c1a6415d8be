package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache is a file-based response cache with a TTL. It backs the
// one-shot sailing listing commands; the wait loop never consults it,
// since every poll tick must be an authoritative fetch.
type FileCache struct {
	dir string
	ttl time.Duration
}

// cacheEntry is one stored response with its expiry.
type cacheEntry struct {
	Data      []byte `json:"data"`
	ExpiresAt int64  `json:"expiresAt"` // unix seconds
}

// NewFileCache creates a cache rooted at dir, creating it if needed.
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}

	return &FileCache{dir: dir, ttl: ttl}, nil
}

// DefaultCacheDir returns the cache directory, honoring XDG_CACHE_HOME.
func DefaultCacheDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, "paat")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "paat-cache")
	}

	return filepath.Join(home, ".cache", "paat")
}

// keyToFilename hashes a cache key (URL) into a stable filename.
func (c *FileCache) keyToFilename(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}

// Get retrieves a value from the cache. Unreadable or expired entries
// are removed and reported as misses.
func (c *FileCache) Get(key string) ([]byte, bool) {
	filename := c.keyToFilename(key)

	// #nosec G304 -- filename is derived from hash of cache key, not user input
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(filename)
		return nil, false
	}

	if time.Now().Unix() >= entry.ExpiresAt {
		_ = os.Remove(filename)
		return nil, false
	}

	return entry.Data, true
}

// Set stores a value in the cache.
func (c *FileCache) Set(key string, value []byte) error {
	entry := cacheEntry{
		Data:      value,
		ExpiresAt: time.Now().Add(c.ttl).Unix(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	// 0600 so cached bodies stay private to the owner
	return os.WriteFile(c.keyToFilename(key), data, 0600)
}

// Clear removes all cache entries.
func (c *FileCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			_ = os.Remove(filepath.Join(c.dir, entry.Name()))
		}
	}

	return nil
}

// Cleanup removes expired entries.
func (c *FileCache) Cleanup() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		filename := filepath.Join(c.dir, entry.Name())
		// #nosec G304 -- filename is from ReadDir within cache directory
		data, err := os.ReadFile(filename)
		if err != nil {
			continue
		}

		var ce cacheEntry
		if err := json.Unmarshal(data, &ce); err != nil {
			_ = os.Remove(filename)
			continue
		}

		if now >= ce.ExpiresAt {
			_ = os.Remove(filename)
		}
	}

	return nil
}
