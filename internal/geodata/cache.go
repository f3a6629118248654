package geodata

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"etlcli/internal/errors"
)

// cacheEntry is the on-disk envelope around a cached payload.
type cacheEntry struct {
	Key      string          `json:"key"`
	CachedAt time.Time       `json:"cached_at"`
	Payload  json.RawMessage `json:"payload"`
}

// FileCache memoizes lookup results as JSON files keyed by a hash of the
// request. Entries older than the TTL are treated as misses.
type FileCache struct {
	dir string
	ttl time.Duration
}

// NewFileCache creates a cache rooted at dir.
func NewFileCache(dir string, ttl time.Duration) *FileCache {
	return &FileCache{dir: dir, ttl: ttl}
}

func (c *FileCache) entryPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// Get loads a cached payload into out. It returns false on a miss, an
// expired entry or an unreadable file.
func (c *FileCache) Get(key string, out interface{}) bool {
	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.Warn("Discarding corrupt cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false
	}

	if c.ttl > 0 && time.Since(entry.CachedAt) > c.ttl {
		return false
	}

	if err := json.Unmarshal(entry.Payload, out); err != nil {
		return false
	}
	return true
}

// Put stores a payload under the key, overwriting any previous entry.
func (c *FileCache) Put(key string, payload interface{}) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return errors.NewStorageError("failed to create cache directory", err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.NewStorageError("failed to marshal cache payload", err)
	}

	entry := cacheEntry{Key: key, CachedAt: time.Now().UTC(), Payload: raw}
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.NewStorageError("failed to marshal cache entry", err)
	}

	if err := os.WriteFile(c.entryPath(key), data, 0644); err != nil {
		return errors.NewStorageError("failed to write cache entry", err)
	}
	return nil
}
