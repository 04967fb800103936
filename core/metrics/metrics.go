package metrics

import "time"

// RefreshEvent captures one schedule refresh cycle.
type RefreshEvent struct {
	Generation string
	PlanCount  int
	Duration   time.Duration
	Failed     bool
	Component  string
	Time       time.Time
}

// LivePlanEvent records a change of the resolved live plan. PlanID is empty
// when the dashboard dropped back to "no service".
type LivePlanEvent struct {
	PlanID        string
	ServiceTypeID string
	Manual        bool
	Time          time.Time
}

// SlotUpdateEvent records one display slot receiving a new name.
type SlotUpdateEvent struct {
	Slot    int
	PlanID  string
	Cleared bool
	Time    time.Time
}

// DeviceStateEvent is a snapshot of a receiver channel.
type DeviceStateEvent struct {
	DeviceID string
	Channel  string
	Battery  int
	RF       int
	Audio    int
	Time     time.Time
}

// MetricsSink records schedule refreshes for observability purposes.
// Additional event kinds are optional capabilities discovered by interface
// assertion, so sinks only implement what their backend can store.
type MetricsSink interface {
	RecordRefresh(ev RefreshEvent) error
}

// LivePlanRecorder records live-plan transitions.
type LivePlanRecorder interface {
	RecordLivePlan(ev LivePlanEvent) error
}

// SlotUpdateRecorder records slot name updates.
type SlotUpdateRecorder interface {
	RecordSlotUpdate(ev SlotUpdateEvent) error
}

// DeviceStateRecorder records receiver channel snapshots.
type DeviceStateRecorder interface {
	RecordDeviceState(ev DeviceStateEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRefresh(RefreshEvent) error         { return nil }
func (NopSink) RecordLivePlan(LivePlanEvent) error       { return nil }
func (NopSink) RecordSlotUpdate(SlotUpdateEvent) error   { return nil }
func (NopSink) RecordDeviceState(DeviceStateEvent) error { return nil }
