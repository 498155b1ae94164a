// Package store holds the canonical file list and notifies the bus on mutation.
package store

import (
	"sync"

	"github.com/hyperjump/erabu/internal/events"
	"github.com/hyperjump/erabu/internal/models"
)

// Store is the sole owner of the canonical file list. All mutation goes
// through Set, Update, or UpdateMany; every write publishes a StateChanged
// event for path "files" so downstream filtering re-runs. Readers get copies.
type Store struct {
	mu    sync.RWMutex
	files []models.File
	index map[string]int // id -> position in files
	bus   *events.Bus
}

// FilesPath is the state path published on every file-list mutation.
const FilesPath = "files"

// New returns an empty store publishing to bus. bus may be nil for tests.
func New(bus *events.Bus) *Store {
	return &Store{index: make(map[string]int), bus: bus}
}

// Set replaces the canonical list. Records are normalized on the way in so
// every record has a stable ID.
func (s *Store) Set(files []models.File) {
	s.mu.Lock()
	old := len(s.files)
	s.files = make([]models.File, len(files))
	copy(s.files, files)
	s.index = make(map[string]int, len(files))
	for i := range s.files {
		s.files[i].Normalize()
		s.index[s.files[i].ID] = i
	}
	newLen := len(s.files)
	s.mu.Unlock()

	s.notify(old, newLen)
}

// Files returns a copy of the canonical list.
func (s *Store) Files() []models.File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.File, len(s.files))
	copy(out, s.files)
	return out
}

// Get returns the file with the given ID.
func (s *Store) Get(id string) (models.File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return models.File{}, false
	}
	return s.files[i], true
}

// Len returns the number of files.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Update applies patch to the file with the given ID and notifies. Returns
// false when the ID is unknown (lookup misses are the caller's no-op case).
func (s *Store) Update(id string, patch func(*models.File)) bool {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	patch(&s.files[i])
	n := len(s.files)
	s.mu.Unlock()

	s.notify(n, n)
	return true
}

// UpdateMany applies patch to every matching ID in one write and one
// notification. Missing IDs are skipped; the count of patched records is
// returned. This is the single-write primitive bulk actions rely on.
func (s *Store) UpdateMany(ids []string, patch func(*models.File)) int {
	s.mu.Lock()
	updated := 0
	for _, id := range ids {
		if i, ok := s.index[id]; ok {
			patch(&s.files[i])
			updated++
		}
	}
	n := len(s.files)
	s.mu.Unlock()

	if updated > 0 {
		s.notify(n, n)
	}
	return updated
}

func (s *Store) notify(oldLen, newLen int) {
	if s.bus != nil {
		s.bus.Publish(events.StateChanged{Path: FilesPath, Old: oldLen, New: newLen})
	}
}
