// Package store persists the three documents that outlive a catalog fetch:
// the favorite set, per-command settings, and usage stats. Each document is
// a single JSON value under one key; every writer does a whole-document
// read-modify-write, serialized in-process by a mutex. Concurrent writers
// from other processes remain last-write-wins.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

const (
	favoritesKey = "favorites"
	settingsKey  = "settings"
	usageKey     = "usage"
)

// CommandSetting holds the per-command user overrides.
type CommandSetting struct {
	Keybinding string `json:"keybinding,omitempty"`
}

// UsageStat records how often and how recently a command was executed.
type UsageStat struct {
	Count      int       `json:"count"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}

// Store is a diskv-backed document store.
type Store struct {
	mu sync.Mutex
	d  *diskv.Diskv
}

// Open creates the backing directory if needed and returns a Store.
func Open(basePath string) (*Store, error) {
	if basePath == "" {
		return nil, errors.New("store: base path is empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", basePath, err)
	}
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 1024 * 1024,
		}),
	}, nil
}

func (s *Store) readDoc(key string, out any) error {
	data, err := s.d.Read(key)
	if err != nil {
		// A missing document is an empty document.
		if os.IsNotExist(err) || !s.d.Has(key) {
			return nil
		}
		return fmt.Errorf("store: read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) writeDoc(key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	if err := s.d.Write(key, data); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

// Favorites returns the ordered favorite command IDs.
func (s *Store) Favorites() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	if err := s.readDoc(favoritesKey, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// ToggleFavorite adds or removes an ID from the favorite set and reports the
// new membership.
func (s *Store) ToggleFavorite(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	if err := s.readDoc(favoritesKey, &ids); err != nil {
		return false, err
	}
	kept := ids[:0]
	removed := false
	for _, existing := range ids {
		if existing == id {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	if !removed {
		kept = append(kept, id)
	}
	if err := s.writeDoc(favoritesKey, kept); err != nil {
		return false, err
	}
	return !removed, nil
}

// Settings returns the per-command settings document.
func (s *Store) Settings() (map[string]CommandSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := map[string]CommandSetting{}
	if err := s.readDoc(settingsKey, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSetting sets one named setting for a command. An empty value clears
// the setting; a command with no remaining settings is dropped from the
// document.
func (s *Store) UpdateSetting(commandID, setting, value string) error {
	if commandID == "" {
		return errors.New("store: command ID is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := map[string]CommandSetting{}
	if err := s.readDoc(settingsKey, &settings); err != nil {
		return err
	}
	entry := settings[commandID]
	switch setting {
	case "keybinding":
		entry.Keybinding = value
	default:
		return fmt.Errorf("store: unknown setting %q", setting)
	}
	if entry == (CommandSetting{}) {
		delete(settings, commandID)
	} else {
		settings[commandID] = entry
	}
	return s.writeDoc(settingsKey, settings)
}

// Usage returns the usage stats document.
func (s *Store) Usage() (map[string]UsageStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	usage := map[string]UsageStat{}
	if err := s.readDoc(usageKey, &usage); err != nil {
		return nil, err
	}
	return usage, nil
}

// RecordUsage increments the counter and stamps the last-used time for a
// command. When maxEntries > 0 the document is pruned to the most recently
// used entries to keep it bounded.
func (s *Store) RecordUsage(id string, at time.Time, maxEntries int) error {
	if id == "" {
		return errors.New("store: command ID is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	usage := map[string]UsageStat{}
	if err := s.readDoc(usageKey, &usage); err != nil {
		return err
	}
	stat := usage[id]
	stat.Count++
	stat.LastUsedAt = at
	usage[id] = stat
	if maxEntries > 0 && len(usage) > maxEntries {
		pruneOldest(usage, maxEntries)
	}
	return s.writeDoc(usageKey, usage)
}

// pruneOldest drops the least recently used entries until len == keep.
func pruneOldest(usage map[string]UsageStat, keep int) {
	for len(usage) > keep {
		oldestID := ""
		var oldest time.Time
		for id, stat := range usage {
			if oldestID == "" || stat.LastUsedAt.Before(oldest) {
				oldestID = id
				oldest = stat.LastUsedAt
			}
		}
		delete(usage, oldestID)
	}
}
