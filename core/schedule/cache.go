package schedule

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stagewatch/stagewatch/core/model"
)

// Snapshot is one immutable generation of cached plans. Consumers share the
// slice and must never mutate it; Replace builds a fresh one.
type Snapshot struct {
	Plans       []model.PlanRecord `json:"plans"`
	Generation  string             `json:"generation"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// PlanByID finds a plan in the snapshot.
func (s *Snapshot) PlanByID(id string) (model.PlanRecord, bool) {
	for _, p := range s.Plans {
		if p.PlanID == id {
			return p, true
		}
	}
	return model.PlanRecord{}, false
}

// Cache holds the most recently fetched set of upcoming plans. Refreshes
// swap a single snapshot reference so readers never observe a partial
// update. The cache does not schedule its own refresh and keeps no TTL;
// staleness policy lives with the caller, which can inspect GeneratedAt.
type Cache struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewCache creates an empty cache with a zero-plan snapshot.
func NewCache() *Cache {
	return &Cache{snap: &Snapshot{Generation: uuid.NewString()}}
}

// Replace installs plans as the new generation, sorted by live time and
// then plan id for deterministic iteration. The previous snapshot stays
// valid for readers that already hold it.
func (c *Cache) Replace(plans []model.PlanRecord, now time.Time) *Snapshot {
	cp := make([]model.PlanRecord, len(plans))
	copy(cp, plans)
	sort.Slice(cp, func(i, j int) bool {
		if !cp[i].LiveTime.Equal(cp[j].LiveTime) {
			return cp[i].LiveTime.Before(cp[j].LiveTime)
		}
		return cp[i].PlanID < cp[j].PlanID
	})
	snap := &Snapshot{Plans: cp, Generation: uuid.NewString(), GeneratedAt: now}
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	return snap
}

// Get returns the current snapshot.
func (c *Cache) Get() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}
