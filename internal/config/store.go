package config

import "sync/atomic"

// Store holds the live configuration snapshot. Readers get an immutable
// pointer; updates build a fresh copy and swap it in one atomic operation,
// so a structured update is never observed half-applied.
type Store struct {
	v atomic.Pointer[Config]
}

// NewStore creates a Store seeded with cfg.
func NewStore(cfg Config) *Store {
	s := &Store{}
	s.Replace(cfg)
	return s
}

// Snapshot returns the current configuration. The returned value must be
// treated as read-only.
func (s *Store) Snapshot() *Config {
	return s.v.Load()
}

// Replace normalizes cfg and swaps it in as the new snapshot.
func (s *Store) Replace(cfg Config) {
	c := cfg.Clone()
	c.Normalize()
	s.v.Store(&c)
}

// Update clones the current snapshot, applies fn, and swaps the result in.
func (s *Store) Update(fn func(*Config)) {
	next := s.Snapshot().Clone()
	fn(&next)
	s.Replace(next)
}

// GroupEnabled reports whether collection is enabled for a group.
func (s *Store) GroupEnabled(groupID string) bool {
	return s.Snapshot().GroupEnabled(groupID)
}
