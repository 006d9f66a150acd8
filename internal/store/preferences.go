package store

import (
	"sync"

	"github.com/i474232898/cloudy/internal/settings"
)

// PreferenceStore is a concurrency-safe in-memory holder of display preferences.
// Nothing is persisted; a restart returns to the initial preferences.
type PreferenceStore struct {
	mu    sync.RWMutex
	prefs settings.Preferences
}

// NewPreferenceStore creates a store seeded with initial.
func NewPreferenceStore(initial settings.Preferences) *PreferenceStore {
	return &PreferenceStore{prefs: initial}
}

// Get returns the current preferences.
func (s *PreferenceStore) Get() settings.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Set updates one preference. It reports whether the stored value changed.
func (s *PreferenceStore) Set(kind settings.Kind, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.prefs.With(kind, value)
	if err != nil {
		return false, err
	}
	if next == s.prefs {
		return false, nil
	}
	s.prefs = next
	return true, nil
}
