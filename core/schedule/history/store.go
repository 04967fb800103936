package history

import (
	"context"
	"time"
)

// Transition captures one change of the resolved live plan. A record with an
// empty PlanID marks the dashboard dropping back to "no service".
type Transition struct {
	Timestamp      time.Time      `json:"timestamp"`
	PlanID         string         `json:"plan_id"`
	PreviousPlanID string         `json:"previous_plan_id"`
	ServiceTypeID  string         `json:"service_type_id"`
	Title          string         `json:"title"`
	Manual         bool           `json:"manual"`
	SlotNames      map[int]string `json:"slot_names,omitempty"`
}

// Query defines filters for retrieving transitions.
type Query struct {
	Start  time.Time
	End    time.Time
	PlanID string
}

// Matches reports whether the record passes the query filters.
func (q Query) Matches(t Transition) bool {
	if !q.Start.IsZero() && t.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && t.Timestamp.After(q.End) {
		return false
	}
	if q.PlanID != "" && t.PlanID != q.PlanID && t.PreviousPlanID != q.PlanID {
		return false
	}
	return true
}

// Store persists transitions and supports querying.
type Store interface {
	Append(ctx context.Context, t Transition) error
	Query(ctx context.Context, q Query) ([]Transition, error)
	Close() error
}
