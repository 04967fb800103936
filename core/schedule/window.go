package schedule

import (
	"time"

	"github.com/stagewatch/stagewatch/core/model"
)

// EndOfDay returns the last instant of t's calendar day in loc. A nil
// location falls back to t's own location.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = t.Location()
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}

// IsLive reports whether the plan is inside its live window at now: from
// LiveTime through the end of the service day, inclusive at both ends. A
// service that runs long stays live for the rest of its calendar day but
// never bleeds into the next one.
func IsLive(p model.PlanRecord, now time.Time, loc *time.Location) bool {
	if now.Before(p.LiveTime) {
		return false
	}
	return !now.After(EndOfDay(p.ServiceTime, loc))
}

// StateAt derives the lifecycle state of a plan at now.
func StateAt(p model.PlanRecord, now time.Time, loc *time.Location) model.PlanState {
	switch {
	case now.Before(p.LiveTime):
		return model.StateUpcoming
	case now.After(EndOfDay(p.ServiceTime, loc)):
		return model.StateEnded
	case now.Before(p.ServiceTime):
		return model.StateReady
	default:
		return model.StateLive
	}
}
