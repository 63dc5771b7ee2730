package catalogue

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// WarmCache persists an already-parsed-and-sorted catalogue to disk, keyed by
// the content hash of its source file, so a process restart does not have to
// re-parse a large CSV. It never affects correctness: a miss or a read/write
// error simply falls back to a fresh parse.
type WarmCache struct {
	Dir string
}

// NewWarmCache returns a WarmCache rooted at dir. dir is created on first
// write if missing.
func NewWarmCache(dir string) *WarmCache {
	return &WarmCache{Dir: dir}
}

// HashFile returns the hex SHA-256 of the file at path, used as the cache key.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (c *WarmCache) path(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns the cached, already-sorted events for key, if present.
func (c *WarmCache) Get(key string) ([]Event, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, false
	}
	return events, true
}

// Put atomically persists events under key (temp file + rename, so a crash
// mid-write never leaves a corrupt cache entry behind).
func (c *WarmCache) Put(key string, events []Event) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return renameio.WriteFile(c.path(key), data, 0o644)
}
