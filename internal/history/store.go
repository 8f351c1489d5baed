// Package history keeps the rolling list of past generations. The list is
// newest-first, capped at 50 entries, and persisted as a JSON file so it
// survives restarts. Persistence is best-effort: a missing or corrupt file is
// treated as an empty history, and write failures are logged rather than
// surfaced, matching how the UI treats its storage layer.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"promptcanvas/internal/assets"
	"promptcanvas/internal/normalize"
)

// MaxEntries is the history capacity. Appending past it drops the oldest.
const MaxEntries = 50

// Entry is one past generation. Entries are never mutated after creation;
// changes replace the whole entry.
type Entry struct {
	ID        string                 `json:"id"`
	Prompt    string                 `json:"prompt"`
	Style     string                 `json:"style"`
	Size      string                 `json:"size"`
	Quality   string                 `json:"quality"`
	Result    *normalize.ImageResult `json:"result"`
	Timestamp time.Time              `json:"timestamp"`
}

// Store holds the in-memory history and its persisted copy. Safe for
// concurrent use by HTTP handlers.
type Store struct {
	mu      sync.Mutex
	path    string
	entries []Entry
	sample  bool
}

// NewStore creates a store persisting to path. Call Load to pick up any
// previously persisted history.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted history. Missing or corrupt data yields an empty
// list; it is never an error the caller has to handle.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = s.readPersisted()
}

func (s *Store) readPersisted() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.path).Msg("Could not read history file")
		}
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("Corrupt history file, starting empty")
		return nil
	}
	return entries
}

// Append prepends an entry and truncates to MaxEntries, then persists.
// While sample mode is active the entry still goes to the real list; the
// sample view is read-only.
func (s *Store) Append(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append([]Entry{entry}, s.entries...)
	if len(s.entries) > MaxEntries {
		s.entries = s.entries[:MaxEntries]
	}
	s.persist()
}

// Clear empties the in-memory list and the persisted copy.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.persist()
}

// SetSampleMode toggles the built-in demo dataset. Enabling it swaps the
// visible list without touching the persisted copy; disabling it reloads the
// persisted copy from disk.
func (s *Store) SetSampleMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sample = on
	if !on {
		s.entries = s.readPersisted()
	}
}

// SampleMode reports whether the demo dataset is currently shown.
func (s *Store) SampleMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sample
}

// Entries returns the visible history: the demo dataset while sample mode is
// on, otherwise a copy of the real list.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sample {
		return SampleEntries()
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// persist writes the real list to disk. Failures are logged and swallowed.
// Callers must hold s.mu.
func (s *Store) persist() {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Could not encode history")
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("Could not create history directory")
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("Could not write history file")
	}
}

// SampleEntries decodes the embedded demo dataset. The dataset ships with the
// binary, so a decode failure is a build defect; it degrades to an empty list.
func SampleEntries() []Entry {
	var entries []Entry
	if err := json.Unmarshal(assets.SampleHistory, &entries); err != nil {
		log.Error().Err(err).Msg("Embedded sample history is invalid")
		return nil
	}
	return entries
}
