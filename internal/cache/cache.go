// Package cache persists downloaded configurations between runs so unchanged
// devices are not re-downloaded and offline runs can replay the last fetch.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Entry is one cached device configuration.
type Entry struct {
	Hash      string    `json:"hash"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}

// DB maps hostname to its cached configuration.
type DB struct {
	Entries map[string]Entry `json:"entries"`
}

// DefaultPath places the cache under the user cache dir.
func DefaultPath() string {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home == "" {
			return ""
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "confscan", "configs.json")
}

// Load reads the cache at path. A missing or corrupt file yields an empty DB
// and the underlying error; callers may ignore it.
func Load(path string) (DB, error) {
	empty := DB{Entries: map[string]Entry{}}
	if path == "" {
		return empty, errors.New("no cache path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return empty, err
	}
	var db DB
	if err := json.Unmarshal(b, &db); err != nil {
		return empty, err
	}
	if db.Entries == nil {
		db.Entries = map[string]Entry{}
	}
	return db, nil
}

// Save writes the cache, creating the parent directory as needed.
func Save(path string, db DB) error {
	if path == "" {
		return errors.New("no cache path")
	}
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, _ := json.MarshalIndent(db, "", "  ")
	return os.WriteFile(path, b, 0o600)
}
