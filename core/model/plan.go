package model

import (
	"fmt"
	"strings"
	"time"
)

// AssignmentStatus describes how a scheduled person responded to their
// assignment in the planning system.
type AssignmentStatus string

const (
	StatusConfirmed   AssignmentStatus = "confirmed"
	StatusAccepted    AssignmentStatus = "accepted"
	StatusDeclined    AssignmentStatus = "declined"
	StatusUnconfirmed AssignmentStatus = "unconfirmed"
)

// Eligible reports whether an assignment with this status may be shown on a
// display. Only confirmed and accepted people are ever surfaced.
func (s AssignmentStatus) Eligible() bool {
	return s == StatusConfirmed || s == StatusAccepted
}

// Assignment is one person scheduled on a team position for a plan.
type Assignment struct {
	TeamName     string           `json:"team_name"`
	PositionName string           `json:"position_name"`
	PersonName   string           `json:"person_name"`
	Status       AssignmentStatus `json:"status"`
}

// PlanRecord is one planned service occurrence fetched from the scheduling
// API and normalized into the single shape used by the core. Timestamps keep
// their original offsets; the live window math applies the configured
// display timezone.
type PlanRecord struct {
	PlanID          string       `json:"plan_id"`
	ServiceTypeID   string       `json:"service_type_id"`
	ServiceTypeName string       `json:"service_type_name"`
	Title           string       `json:"title"`
	ServiceTime     time.Time    `json:"service_time"`
	LiveTime        time.Time    `json:"live_time"`
	Assignments     []Assignment `json:"assignments"`
}

// Validate checks the structural invariants of a plan record.
func (p PlanRecord) Validate() error {
	if p.PlanID == "" {
		return fmt.Errorf("plan_id is required")
	}
	if p.ServiceTime.IsZero() || p.LiveTime.IsZero() {
		return fmt.Errorf("service_time and live_time required")
	}
	if p.LiveTime.After(p.ServiceTime) {
		return fmt.Errorf("live_time %s after service_time %s", p.LiveTime, p.ServiceTime)
	}
	return nil
}

// PlanState is the derived lifecycle state of a plan relative to a point in
// time. It is recomputed on demand and never stored.
type PlanState int

const (
	StateUpcoming PlanState = iota
	StateReady
	StateLive
	StateEnded
)

func (s PlanState) String() string {
	switch s {
	case StateUpcoming:
		return "upcoming"
	case StateReady:
		return "ready"
	case StateLive:
		return "live"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MarshalText lets PlanState serialize as its lowercase name.
func (s PlanState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ResolvedLiveState is the outcome of live-plan resolution: the plan to show
// right now, if any, and whether a manual pin produced it. It is a pure
// function of the cache, the override store and the clock.
type ResolvedLiveState struct {
	Plan     *PlanRecord `json:"plan"`
	IsManual bool        `json:"is_manual"`
}

// NormalizeName collapses a team or position name for matching: lowercase
// with spaces, hyphens and underscores removed, so that "MIc 1", "mic-1" and
// "Mic 1" all compare equal. Scheduling data is hand-entered and drifts.
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
