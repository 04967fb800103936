package schedule

import (
	"time"

	"github.com/stagewatch/stagewatch/core/model"
)

// Selector picks the single authoritative live plan from a cache snapshot
// and the manual override. It holds no derived state: every call recomputes
// the answer from current inputs, so refreshed plans and cleared pins take
// effect immediately.
type Selector struct {
	cache     *Cache
	overrides *OverrideStore
	loc       *time.Location
}

// NewSelector wires a selector to its stores. loc is the display timezone
// used for end-of-day math; nil keeps each timestamp's own location.
func NewSelector(cache *Cache, overrides *OverrideStore, loc *time.Location) *Selector {
	return &Selector{cache: cache, overrides: overrides, loc: loc}
}

// autoLive returns the plan that is automatically live at now, if any.
// Overlapping windows tie-break on earliest service time, then on the
// lexicographically smallest plan id, giving a total deterministic order.
func (s *Selector) autoLive(snap *Snapshot, now time.Time) *model.PlanRecord {
	var best *model.PlanRecord
	for i := range snap.Plans {
		p := &snap.Plans[i]
		if !IsLive(*p, now, s.loc) {
			continue
		}
		if best == nil {
			best = p
			continue
		}
		if p.ServiceTime.Before(best.ServiceTime) ||
			(p.ServiceTime.Equal(best.ServiceTime) && p.PlanID < best.PlanID) {
			best = p
		}
	}
	return best
}

// Resolve computes the live state at now. A scheduled plan inside its live
// window always wins; the manual pin only fills the gap when nothing is
// automatically live and the pinned plan still exists in the cache. A stale
// pin pointing at a dropped plan resolves to no service.
func (s *Selector) Resolve(now time.Time) model.ResolvedLiveState {
	snap := s.cache.Get()
	if auto := s.autoLive(snap, now); auto != nil {
		p := *auto
		return model.ResolvedLiveState{Plan: &p, IsManual: false}
	}
	if ov, ok := s.overrides.Get(); ok {
		if p, ok := snap.PlanByID(ov.PlanID); ok {
			return model.ResolvedLiveState{Plan: &p, IsManual: true}
		}
	}
	return model.ResolvedLiveState{}
}

// AnnotatedPlan is a plan with its derived state, for list display.
type AnnotatedPlan struct {
	model.PlanRecord
	State    model.PlanState `json:"state"`
	IsLive   bool            `json:"is_live"`
	IsManual bool            `json:"is_manual"`
	// Slots is filled by the coordinator with the mapped display names,
	// manual slot overrides included.
	Slots map[int]string `json:"slot_assignments,omitempty"`
}

// Annotate returns all cached plans with their states at now, marking the
// currently resolved plan and the manual pin.
func (s *Selector) Annotate(now time.Time) ([]AnnotatedPlan, model.ResolvedLiveState) {
	snap := s.cache.Get()
	resolved := s.Resolve(now)
	ov, hasOv := s.overrides.Get()
	out := make([]AnnotatedPlan, 0, len(snap.Plans))
	for _, p := range snap.Plans {
		ap := AnnotatedPlan{PlanRecord: p, State: StateAt(p, now, s.loc)}
		ap.IsLive = resolved.Plan != nil && resolved.Plan.PlanID == p.PlanID
		ap.IsManual = hasOv && ov.PlanID == p.PlanID
		out = append(out, ap)
	}
	return out, resolved
}
