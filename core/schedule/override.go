package schedule

import (
	"sync"
	"time"
)

// Override is an operator-pinned plan id. It substitutes for automatic live
// detection only while no plan is automatically live.
type Override struct {
	PlanID string    `json:"plan_id"`
	SetAt  time.Time `json:"set_at"`
}

// OverrideStore holds at most one manual override. Single slot,
// last-write-wins, no history.
type OverrideStore struct {
	mu  sync.RWMutex
	rec *Override
}

// NewOverrideStore creates an empty store.
func NewOverrideStore() *OverrideStore { return &OverrideStore{} }

// Set records the pinned plan id.
func (s *OverrideStore) Set(planID string, now time.Time) {
	s.mu.Lock()
	s.rec = &Override{PlanID: planID, SetAt: now}
	s.mu.Unlock()
}

// Clear removes the pin. Clearing an empty store is a no-op.
func (s *OverrideStore) Clear() {
	s.mu.Lock()
	s.rec = nil
	s.mu.Unlock()
}

// Get returns the current override, if any.
func (s *OverrideStore) Get() (Override, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec == nil {
		return Override{}, false
	}
	return *s.rec, true
}
