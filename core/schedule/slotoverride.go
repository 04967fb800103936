package schedule

import "sync"

// SlotOverrideStore keeps operator-entered display names for individual
// slots of a specific plan. Overrides are merged over the mapped assignment
// names when that plan is resolved, letting an operator fix a name without
// touching the planning system.
type SlotOverrideStore struct {
	mu    sync.RWMutex
	plans map[string]map[int]string
}

// NewSlotOverrideStore creates an empty store.
func NewSlotOverrideStore() *SlotOverrideStore {
	return &SlotOverrideStore{plans: make(map[string]map[int]string)}
}

// Set records overrides for a plan. An empty name removes the override for
// that slot rather than storing an empty display value.
func (s *SlotOverrideStore) Set(planID string, names map[int]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.plans[planID]
	if existing == nil {
		existing = make(map[int]string)
	}
	for slot, name := range names {
		if name == "" {
			delete(existing, slot)
			continue
		}
		existing[slot] = name
	}
	if len(existing) == 0 {
		delete(s.plans, planID)
		return
	}
	s.plans[planID] = existing
}

// Get returns a copy of the overrides for a plan.
func (s *SlotOverrideStore) Get(planID string) map[int]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]string, len(s.plans[planID]))
	for slot, name := range s.plans[planID] {
		out[slot] = name
	}
	return out
}

// Clear removes overrides for a plan. With no slots given the whole plan
// entry is dropped.
func (s *SlotOverrideStore) Clear(planID string, slots ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(slots) == 0 {
		delete(s.plans, planID)
		return
	}
	for _, slot := range slots {
		delete(s.plans[planID], slot)
	}
	if len(s.plans[planID]) == 0 {
		delete(s.plans, planID)
	}
}
