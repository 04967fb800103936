package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stagewatch/stagewatch/core/logger"
	coremetrics "github.com/stagewatch/stagewatch/core/metrics"
	"github.com/stagewatch/stagewatch/core/model"
	"github.com/stagewatch/stagewatch/core/schedule/history"
	"github.com/stagewatch/stagewatch/internal/eventbus"
)

// PlanSource supplies normalized upcoming plans for the configured service
// types. Implementations own authentication, pagination and rate limiting.
type PlanSource interface {
	FetchUpcomingPlans(ctx context.Context, serviceTypeIDs []string, windowDays int) ([]model.PlanRecord, error)
}

// LiveChange is published on the bus whenever the resolved plan or its slot
// names change. Slots carries the full mapping for the new state; consumers
// must treat absent slots as "leave the display alone".
type LiveChange struct {
	Previous model.ResolvedLiveState
	Current  model.ResolvedLiveState
	Slots    map[int]string
	At       time.Time
}

// Coordinator composes the schedule stores and the selector behind the
// operations the rest of the service uses. It is the single application
// context object: no package-level state, so tests run instances in
// parallel.
type Coordinator struct {
	source        PlanSource
	cache         *Cache
	overrides     *OverrideStore
	slotOverrides *SlotOverrideStore
	selector      *Selector

	serviceTypes map[string]model.ServiceTypeConfig
	typeIDs      []string
	windowDays   int
	loc          *time.Location

	bus  *eventbus.TypedBus[LiveChange]
	sink coremetrics.MetricsSink
	hist history.Store
	log  logger.Logger

	// guards refresh serialization and last published state
	mu        sync.Mutex
	lastState model.ResolvedLiveState
	lastSlots map[int]string
}

// Options bundles the collaborators a Coordinator needs.
type Options struct {
	Source       PlanSource
	ServiceTypes []model.ServiceTypeConfig
	WindowDays   int
	Location     *time.Location
	Bus          *eventbus.TypedBus[LiveChange]
	Sink         coremetrics.MetricsSink
	History      history.Store
	Log          logger.Logger
}

// New creates a Coordinator. Duplicate reuse rules for one slot follow
// last-rule-wins; the duplicates are logged once here so misconfiguration
// is visible without failing startup.
func New(opts Options) *Coordinator {
	if opts.Sink == nil {
		opts.Sink = coremetrics.NopSink{}
	}
	types := make(map[string]model.ServiceTypeConfig, len(opts.ServiceTypes))
	ids := make([]string, 0, len(opts.ServiceTypes))
	for _, st := range opts.ServiceTypes {
		types[st.ServiceTypeID] = st
		ids = append(ids, st.ServiceTypeID)
		if _, dups := st.DedupedRules(); len(dups) > 0 && opts.Log != nil {
			opts.Log.Warnf("service type %s: duplicate reuse rules for slots %v, last rule wins", st.ServiceTypeID, dups)
		}
	}
	cache := NewCache()
	overrides := NewOverrideStore()
	c := &Coordinator{
		source:        opts.Source,
		cache:         cache,
		overrides:     overrides,
		slotOverrides: NewSlotOverrideStore(),
		selector:      NewSelector(cache, overrides, opts.Location),
		serviceTypes:  types,
		typeIDs:       ids,
		windowDays:    opts.WindowDays,
		loc:           opts.Location,
		bus:           opts.Bus,
		sink:          opts.Sink,
		hist:          opts.History,
		log:           opts.Log,
	}
	return c
}

// Refresh fetches upcoming plans and atomically replaces the cache. A fetch
// failure leaves the previous generation in place and is reported as
// ErrSourceUnavailable.
func (c *Coordinator) Refresh(ctx context.Context, now time.Time) (*Snapshot, error) {
	start := time.Now()
	plans, err := c.source.FetchUpcomingPlans(ctx, c.typeIDs, c.windowDays)
	if err != nil {
		_ = c.sink.RecordRefresh(coremetrics.RefreshEvent{
			Failed: true, Duration: time.Since(start), Component: "schedule", Time: now,
		})
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	valid := plans[:0:0]
	for _, p := range plans {
		if err := p.Validate(); err != nil {
			if c.log != nil {
				c.log.Warnf("dropping invalid plan: %v", err)
			}
			continue
		}
		valid = append(valid, p)
	}
	snap := c.cache.Replace(valid, now)
	_ = c.sink.RecordRefresh(coremetrics.RefreshEvent{
		Generation: snap.Generation,
		PlanCount:  len(snap.Plans),
		Duration:   time.Since(start),
		Component:  "schedule",
		Time:       now,
	})
	c.CheckLive(ctx, now)
	return snap, nil
}

// Cache exposes the underlying cache, read-only by convention.
func (c *Coordinator) Cache() *Cache { return c.cache }

// Current resolves the live state at now.
func (c *Coordinator) Current(now time.Time) model.ResolvedLiveState {
	return c.selector.Resolve(now)
}

// UpcomingPlans returns state-annotated plans for list display plus the id
// of the currently resolved plan, empty when no service is live.
func (c *Coordinator) UpcomingPlans(now time.Time) ([]AnnotatedPlan, string) {
	plans, resolved := c.selector.Annotate(now)
	for i := range plans {
		plans[i].Slots = c.slotsFor(plans[i].PlanRecord)
	}
	current := ""
	if resolved.Plan != nil {
		current = resolved.Plan.PlanID
	}
	return plans, current
}

// CurrentSlots composes selection and slot mapping for the resolved plan.
// No live plan, or a plan whose service type has no configuration yet, maps
// to an empty result.
func (c *Coordinator) CurrentSlots(now time.Time) map[int]string {
	resolved := c.selector.Resolve(now)
	if resolved.Plan == nil {
		return map[int]string{}
	}
	return c.slotsFor(*resolved.Plan)
}

func (c *Coordinator) slotsFor(plan model.PlanRecord) map[int]string {
	out := MapSlots(plan, c.serviceTypes[plan.ServiceTypeID])
	for slot, name := range c.slotOverrides.Get(plan.PlanID) {
		out[slot] = name
	}
	return out
}

// SetManualPlan pins a plan. The pin is recorded even while another plan is
// automatically live; selection keeps the automatic plan authoritative, so
// such a pin is inert until the scheduled service ends.
func (c *Coordinator) SetManualPlan(ctx context.Context, planID string, now time.Time) error {
	if _, ok := c.cache.Get().PlanByID(planID); !ok {
		return fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}
	c.overrides.Set(planID, now)
	c.CheckLive(ctx, now)
	return nil
}

// ClearManualPlan removes the pin. Always succeeds.
func (c *Coordinator) ClearManualPlan(ctx context.Context, now time.Time) {
	c.overrides.Clear()
	c.CheckLive(ctx, now)
}

// ManualOverride reports the current pin, if any.
func (c *Coordinator) ManualOverride() (Override, bool) { return c.overrides.Get() }

// SetSlotOverrides stores per-plan display-name overrides and republishes
// if the plan is currently resolved.
func (c *Coordinator) SetSlotOverrides(ctx context.Context, planID string, names map[int]string, now time.Time) error {
	if _, ok := c.cache.Get().PlanByID(planID); !ok {
		return fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}
	c.slotOverrides.Set(planID, names)
	c.CheckLive(ctx, now)
	return nil
}

// SlotOverrides returns the overrides recorded for a plan.
func (c *Coordinator) SlotOverrides(planID string) map[int]string {
	return c.slotOverrides.Get(planID)
}

// ClearSlotOverrides drops overrides for a plan, or only the given slots.
func (c *Coordinator) ClearSlotOverrides(ctx context.Context, planID string, now time.Time, slots ...int) {
	c.slotOverrides.Clear(planID, slots...)
	c.CheckLive(ctx, now)
}

// CheckLive recomputes the resolved state and, when the plan or its slot
// names changed since the last check, publishes a LiveChange, records the
// transition in the history store and emits metrics. Callers run it after
// every mutation and on a timer so wall-clock transitions are noticed.
func (c *Coordinator) CheckLive(ctx context.Context, now time.Time) {
	resolved := c.selector.Resolve(now)
	var slots map[int]string
	if resolved.Plan != nil {
		slots = c.slotsFor(*resolved.Plan)
	} else {
		slots = map[int]string{}
	}

	c.mu.Lock()
	prev := c.lastState
	prevSlots := c.lastSlots
	planChanged := planID(prev) != planID(resolved) || prev.IsManual != resolved.IsManual
	slotsChanged := !slotMapsEqual(prevSlots, slots)
	if planChanged || slotsChanged {
		c.lastState = resolved
		c.lastSlots = slots
	}
	c.mu.Unlock()

	if !planChanged && !slotsChanged {
		return
	}
	if c.log != nil {
		if resolved.Plan != nil {
			c.log.Infof("live plan is now %s (manual=%t, %d slots)", resolved.Plan.PlanID, resolved.IsManual, len(slots))
		} else {
			c.log.Infof("no plan is live")
		}
	}
	if c.bus != nil {
		c.bus.Publish(LiveChange{Previous: prev, Current: resolved, Slots: slots, At: now})
	}
	if slotsChanged {
		if rec, ok := c.sink.(coremetrics.SlotUpdateRecorder); ok {
			for slot, name := range slots {
				if prevSlots[slot] == name {
					continue
				}
				_ = rec.RecordSlotUpdate(coremetrics.SlotUpdateEvent{Slot: slot, PlanID: planID(resolved), Time: now})
			}
			for slot := range prevSlots {
				if _, ok := slots[slot]; !ok {
					_ = rec.RecordSlotUpdate(coremetrics.SlotUpdateEvent{Slot: slot, PlanID: planID(resolved), Cleared: true, Time: now})
				}
			}
		}
	}
	if planChanged {
		ev := coremetrics.LivePlanEvent{Manual: resolved.IsManual, Time: now}
		if resolved.Plan != nil {
			ev.PlanID = resolved.Plan.PlanID
			ev.ServiceTypeID = resolved.Plan.ServiceTypeID
		}
		if rec, ok := c.sink.(coremetrics.LivePlanRecorder); ok {
			_ = rec.RecordLivePlan(ev)
		}
		if c.hist != nil {
			t := history.Transition{
				Timestamp:      now,
				PlanID:         ev.PlanID,
				PreviousPlanID: planID(prev),
				ServiceTypeID:  ev.ServiceTypeID,
				Manual:         resolved.IsManual,
				SlotNames:      slots,
			}
			if resolved.Plan != nil {
				t.Title = resolved.Plan.Title
			}
			if err := c.hist.Append(ctx, t); err != nil && c.log != nil {
				c.log.Errorf("append transition: %v", err)
			}
		}
	}
}

func planID(s model.ResolvedLiveState) string {
	if s.Plan == nil {
		return ""
	}
	return s.Plan.PlanID
}

func slotMapsEqual(a, b map[int]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
