package refresher

import (
	"context"
	"time"

	"github.com/stagewatch/stagewatch/core/logger"
	"github.com/stagewatch/stagewatch/core/schedule"
)

// Refresher keeps the schedule cache warm. It refreshes on a fixed interval,
// forces an extra refresh just after midnight so day-boundary transitions
// use fresh data, and re-evaluates the live window on a faster tick between
// refreshes.
type Refresher struct {
	coord     *schedule.Coordinator
	interval  time.Duration
	liveCheck time.Duration
	loc       *time.Location
	log       logger.Logger
}

// New creates a Refresher. Intervals must be positive; loc is the display
// timezone used for the midnight boundary.
func New(coord *schedule.Coordinator, interval, liveCheck time.Duration, loc *time.Location, log logger.Logger) *Refresher {
	if loc == nil {
		loc = time.Local
	}
	return &Refresher{coord: coord, interval: interval, liveCheck: liveCheck, loc: loc, log: log}
}

// Run blocks until the context is cancelled. The initial refresh failure is
// logged, not fatal: the source may come up after the service.
func (r *Refresher) Run(ctx context.Context) {
	if _, err := r.coord.Refresh(ctx, time.Now()); err != nil {
		r.log.Errorf("initial refresh: %v", err)
	}

	refresh := time.NewTicker(r.interval)
	defer refresh.Stop()
	live := time.NewTicker(r.liveCheck)
	defer live.Stop()
	midnight := time.NewTimer(untilNextMidnight(time.Now(), r.loc))
	defer midnight.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-refresh.C:
			if _, err := r.coord.Refresh(ctx, time.Now()); err != nil {
				r.log.Errorf("refresh: %v", err)
			}
		case <-midnight.C:
			if _, err := r.coord.Refresh(ctx, time.Now()); err != nil {
				r.log.Errorf("midnight refresh: %v", err)
			}
			midnight.Reset(untilNextMidnight(time.Now(), r.loc))
		case <-live.C:
			r.coord.CheckLive(ctx, time.Now())
		}
	}
}

// untilNextMidnight returns the duration to shortly after the next local
// midnight. The small offset avoids firing on the previous day when timer
// resolution rounds down.
func untilNextMidnight(now time.Time, loc *time.Location) time.Duration {
	n := now.In(loc)
	next := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return next.Sub(n) + 5*time.Second
}
