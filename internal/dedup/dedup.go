// Package dedup tracks which upstream events and which candidates have
// already been acted on. Membership is scoped to the process lifetime:
// it grows monotonically, never shrinks, and is never persisted, so the
// at-most-once guarantee holds within a single run only.
package dedup

// Store is not safe for concurrent use; the monitor is the single
// owner.
type Store struct {
	events     map[string]struct{}
	candidates map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		events:     map[string]struct{}{},
		candidates: map[string]struct{}{},
	}
}

func (s *Store) SeenEvent(id string) bool {
	_, ok := s.events[id]
	return ok
}

func (s *Store) MarkEvent(id string) {
	s.events[id] = struct{}{}
}

func (s *Store) SeenCandidate(identifier string) bool {
	_, ok := s.candidates[identifier]
	return ok
}

func (s *Store) MarkCandidate(identifier string) {
	s.candidates[identifier] = struct{}{}
}
