package schedule

import "errors"

// ErrPlanNotFound is returned when an operation names a plan id absent from
// the current cache generation.
var ErrPlanNotFound = errors.New("plan not found in schedule cache")

// ErrSourceUnavailable wraps upstream fetch failures. A refresh that fails
// with it leaves the previous cache generation untouched: stale data beats
// an empty dashboard.
var ErrSourceUnavailable = errors.New("plan source unavailable")
