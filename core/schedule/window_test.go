package schedule

import (
	"testing"
	"time"

	"github.com/stagewatch/stagewatch/core/model"
)

func nyc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func sundayPlan(loc *time.Location) model.PlanRecord {
	service := time.Date(2024, 1, 7, 10, 0, 0, 0, loc)
	return model.PlanRecord{
		PlanID:        "p1",
		ServiceTypeID: "st1",
		Title:         "Sunday Morning",
		ServiceTime:   service,
		LiveTime:      service.Add(-2 * time.Hour),
	}
}

func TestIsLiveWindow(t *testing.T) {
	loc := nyc(t)
	p := sundayPlan(loc)

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before live time", time.Date(2024, 1, 7, 7, 59, 59, 0, loc), false},
		{"exactly live time", p.LiveTime, true},
		{"during pre-roll", time.Date(2024, 1, 7, 9, 0, 0, 0, loc), true},
		{"during service", time.Date(2024, 1, 7, 11, 30, 0, 0, loc), true},
		{"late evening same day", time.Date(2024, 1, 7, 23, 59, 59, 0, loc), true},
		{"next day midnight", time.Date(2024, 1, 8, 0, 0, 0, 0, loc), false},
		{"next day morning", time.Date(2024, 1, 8, 9, 0, 0, 0, loc), false},
	}
	for _, tc := range cases {
		if got := IsLive(p, tc.now, loc); got != tc.want {
			t.Errorf("%s: IsLive = %t, want %t", tc.name, got, tc.want)
		}
	}
}

func TestEndOfDayUsesDisplayTimezone(t *testing.T) {
	loc := nyc(t)
	// 23:30 in UTC on Jan 7 is still Jan 7 in New York; the window must
	// extend to the New York day boundary, not the UTC one.
	service := time.Date(2024, 1, 7, 18, 30, 0, 0, time.UTC)
	eod := EndOfDay(service, loc)
	if eod.In(loc).Day() != 7 || eod.In(loc).Hour() != 23 {
		t.Fatalf("end of day = %s, want Jan 7 23:59:59 New York", eod.In(loc))
	}
	if !eod.After(service) {
		t.Fatalf("end of day %s not after service time %s", eod, service)
	}
}

func TestStateAt(t *testing.T) {
	loc := nyc(t)
	p := sundayPlan(loc)

	cases := []struct {
		name string
		now  time.Time
		want model.PlanState
	}{
		{"upcoming", time.Date(2024, 1, 7, 6, 0, 0, 0, loc), model.StateUpcoming},
		{"ready in pre-roll", time.Date(2024, 1, 7, 8, 30, 0, 0, loc), model.StateReady},
		{"live at service time", p.ServiceTime, model.StateLive},
		{"live after service time", time.Date(2024, 1, 7, 15, 0, 0, 0, loc), model.StateLive},
		{"ended next day", time.Date(2024, 1, 8, 1, 0, 0, 0, loc), model.StateEnded},
	}
	for _, tc := range cases {
		if got := StateAt(p, tc.now, loc); got != tc.want {
			t.Errorf("%s: StateAt = %s, want %s", tc.name, got, tc.want)
		}
	}
}
