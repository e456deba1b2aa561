// Package selection tracks which candidates are excluded from a campaign.
package selection

import (
	"slices"
	"sync"

	"github.com/bingotables/bulkmsg/internal/models"
)

// Set holds the candidate list and the ids the operator excluded from it.
// Exclusions always refer to ids present in the candidate list.
type Set struct {
	mu         sync.RWMutex
	candidates models.CandidateList
	excluded   map[int64]struct{}
}

// New creates a set over candidates with nothing excluded
func New(candidates models.CandidateList) *Set {
	s := &Set{excluded: make(map[int64]struct{})}
	s.candidates = slices.Clone(candidates)
	return s
}

// Replace swaps the candidate list and drops exclusions no longer in scope
func (s *Set) Replace(candidates models.CandidateList) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.candidates = slices.Clone(candidates)
	inScope := s.idsLocked()
	for id := range s.excluded {
		if _, ok := inScope[id]; !ok {
			delete(s.excluded, id)
		}
	}
}

// Reset clears candidates and exclusions
func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = nil
	s.excluded = make(map[int64]struct{})
}

// Exclude removes id from the send target. Unknown ids are ignored.
func (s *Set) Exclude(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasLocked(id) {
		return false
	}
	s.excluded[id] = struct{}{}
	return true
}

// Include puts id back into the send target
func (s *Set) Include(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasLocked(id) {
		return false
	}
	delete(s.excluded, id)
	return true
}

// Toggle flips the exclusion of id and reports whether it is now excluded
func (s *Set) Toggle(id int64) (excluded bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasLocked(id) {
		return false, false
	}
	if _, ex := s.excluded[id]; ex {
		delete(s.excluded, id)
		return false, true
	}
	s.excluded[id] = struct{}{}
	return true, true
}

// ExcludeAll excludes every candidate
func (s *Set) ExcludeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.excluded = make(map[int64]struct{}, len(s.candidates))
	for _, r := range s.candidates {
		s.excluded[r.ID] = struct{}{}
	}
}

// IncludeAll clears every exclusion
func (s *Set) IncludeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.excluded = make(map[int64]struct{})
}

// IsExcluded reports whether id is excluded
func (s *Set) IsExcluded(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.excluded[id]
	return ok
}

// Candidates returns a copy of the candidate list
func (s *Set) Candidates() models.CandidateList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.candidates)
}

// Active returns the candidates that are not excluded, in candidate order.
// Computed on every call.
func (s *Set) Active() models.CandidateList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make(models.CandidateList, 0, len(s.candidates)-len(s.excluded))
	for _, r := range s.candidates {
		if _, ex := s.excluded[r.ID]; !ex {
			active = append(active, r)
		}
	}
	return active
}

// ActiveIDs returns the ids of Active
func (s *Set) ActiveIDs() []int64 {
	return s.Active().IDs()
}

// Excluded returns the excluded ids in ascending order
func (s *Set) Excluded() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.excluded))
	for id := range s.excluded {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of candidates
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candidates)
}

// Restore rebuilds a set from a saved candidate list and exclusions
func Restore(candidates models.CandidateList, excluded []int64) *Set {
	s := New(candidates)
	for _, id := range excluded {
		s.Exclude(id)
	}
	return s
}

func (s *Set) hasLocked(id int64) bool {
	return s.candidates.Index(id) >= 0
}

func (s *Set) idsLocked() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(s.candidates))
	for _, r := range s.candidates {
		ids[r.ID] = struct{}{}
	}
	return ids
}
