package metrics

import coremetrics "github.com/stagewatch/stagewatch/core/metrics"

// MultiSink fans schedule events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRefresh forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRefresh(ev coremetrics.RefreshEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRefresh(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordLivePlan forwards live plan transitions when supported by the sink.
func (m *MultiSink) RecordLivePlan(ev coremetrics.LivePlanEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.LivePlanRecorder); ok {
			if err := rec.RecordLivePlan(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSlotUpdate forwards slot updates when supported by the sink.
func (m *MultiSink) RecordSlotUpdate(ev coremetrics.SlotUpdateEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.SlotUpdateRecorder); ok {
			if err := rec.RecordSlotUpdate(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordDeviceState forwards receiver snapshots when supported by the sink.
func (m *MultiSink) RecordDeviceState(ev coremetrics.DeviceStateEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.DeviceStateRecorder); ok {
			if err := rec.RecordDeviceState(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
