package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/stagewatch/stagewatch/core/metrics"
)

// PromSink records schedule events in Prometheus metrics.
type PromSink struct {
	refreshes  *prometheus.CounterVec
	refreshDur prometheus.Histogram
	planCount  prometheus.Gauge
	live       *prometheus.GaugeVec
	slotSet    *prometheus.CounterVec
	battery    *prometheus.GaugeVec
}

// NewPromSink registers schedule metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_refreshes_total",
		Help: "Total number of schedule refresh cycles",
	}, []string{"failed"})
	refreshDur := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_refresh_duration_seconds",
		Help:    "Time spent fetching and replacing the schedule snapshot",
		Buckets: prometheus.DefBuckets,
	})
	planCount := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_cached_plans",
		Help: "Number of plans in the current schedule snapshot",
	})
	live := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_plan_live",
		Help: "Whether a plan is currently resolved as live (1) or not (0)",
	}, []string{"manual"})
	slotSet := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "display_slot_updates_total",
		Help: "Total number of display slot name updates",
	}, []string{"slot", "cleared"})
	battery := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "receiver_battery_level",
		Help: "Last reported battery level per receiver channel",
	}, []string{"device_id", "channel"})

	if err := reg.Register(refreshes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			refreshes = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(refreshDur); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			refreshDur = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(planCount); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			planCount = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(live); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			live = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(slotSet); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			slotSet = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(battery); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			battery = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		refreshes:  refreshes,
		refreshDur: refreshDur,
		planCount:  planCount,
		live:       live,
		slotSet:    slotSet,
		battery:    battery,
	}, nil
}

// RecordRefresh increments the refresh counter and tracks snapshot size.
func (s *PromSink) RecordRefresh(ev coremetrics.RefreshEvent) error {
	s.refreshes.WithLabelValues(strconv.FormatBool(ev.Failed)).Inc()
	if !ev.Failed {
		s.refreshDur.Observe(ev.Duration.Seconds())
		s.planCount.Set(float64(ev.PlanCount))
	}
	return nil
}

// RecordLivePlan flips the live gauges on plan transitions.
func (s *PromSink) RecordLivePlan(ev coremetrics.LivePlanEvent) error {
	liveVal := 0.0
	if ev.PlanID != "" {
		liveVal = 1
	}
	if ev.Manual {
		s.live.WithLabelValues("true").Set(liveVal)
		s.live.WithLabelValues("false").Set(0)
	} else {
		s.live.WithLabelValues("false").Set(liveVal)
		s.live.WithLabelValues("true").Set(0)
	}
	return nil
}

// RecordSlotUpdate counts slot name updates per display slot.
func (s *PromSink) RecordSlotUpdate(ev coremetrics.SlotUpdateEvent) error {
	s.slotSet.WithLabelValues(strconv.Itoa(ev.Slot), strconv.FormatBool(ev.Cleared)).Inc()
	return nil
}

// RecordDeviceState sets the battery gauge for the reporting channel.
func (s *PromSink) RecordDeviceState(ev coremetrics.DeviceStateEvent) error {
	s.battery.WithLabelValues(ev.DeviceID, ev.Channel).Set(float64(ev.Battery))
	return nil
}
