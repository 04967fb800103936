package refresher

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stagewatch/stagewatch/core/model"
	"github.com/stagewatch/stagewatch/core/schedule"
	"github.com/stagewatch/stagewatch/infra/logger"
)

type countingSource struct {
	calls atomic.Int32
}

func (s *countingSource) FetchUpcomingPlans(ctx context.Context, serviceTypeIDs []string, windowDays int) ([]model.PlanRecord, error) {
	s.calls.Add(1)
	return nil, nil
}

func TestUntilNextMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2024, 1, 7, 22, 0, 0, 0, loc)
	d := untilNextMidnight(now, loc)
	fire := now.Add(d).In(loc)
	if fire.Day() != 8 || fire.Hour() != 0 {
		t.Fatalf("timer would fire at %s, want shortly after Jan 8 midnight", fire)
	}
	if d > 2*time.Hour+time.Minute {
		t.Fatalf("duration %s too long", d)
	}
}

func TestUntilNextMidnightJustBeforeMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2024, 1, 7, 23, 59, 59, 0, loc)
	d := untilNextMidnight(now, loc)
	if fire := now.Add(d).In(loc); fire.Day() != 8 {
		t.Fatalf("timer would fire at %s, want Jan 8", fire)
	}
}

func TestRunRefreshesPeriodically(t *testing.T) {
	src := &countingSource{}
	coord := schedule.New(schedule.Options{
		Source:       src,
		ServiceTypes: []model.ServiceTypeConfig{{ServiceTypeID: "st1"}},
		Location:     time.UTC,
	})
	job := New(coord, 20*time.Millisecond, 10*time.Millisecond, time.UTC, logger.NopLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	job.Run(ctx)

	// one initial refresh plus at least one tick
	if got := src.calls.Load(); got < 2 {
		t.Fatalf("expected periodic refreshes, got %d calls", got)
	}
}
