package metrics

import (
	"testing"

	coremetrics "github.com/stagewatch/stagewatch/core/metrics"
)

type recordSink struct {
	refreshes int
	livePlans int
}

func (r *recordSink) RecordRefresh(coremetrics.RefreshEvent) error {
	r.refreshes++
	return nil
}

func (r *recordSink) RecordLivePlan(coremetrics.LivePlanEvent) error {
	r.livePlans++
	return nil
}

type refreshOnlySink struct {
	refreshes int
}

func (r *refreshOnlySink) RecordRefresh(coremetrics.RefreshEvent) error {
	r.refreshes++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordRefresh(coremetrics.RefreshEvent{}); err != nil {
		t.Fatalf("record refresh: %v", err)
	}
	if err := m.RecordLivePlan(coremetrics.LivePlanEvent{}); err != nil {
		t.Fatalf("record live plan: %v", err)
	}
	if s1.refreshes != 1 || s2.refreshes != 1 || s1.livePlans != 1 || s2.livePlans != 1 {
		t.Fatalf("events not forwarded")
	}
}

func TestMultiSinkSkipsUnsupported(t *testing.T) {
	s := &refreshOnlySink{}
	m := NewMultiSink(s)
	if err := m.RecordLivePlan(coremetrics.LivePlanEvent{}); err != nil {
		t.Fatalf("record live plan: %v", err)
	}
	if err := m.RecordSlotUpdate(coremetrics.SlotUpdateEvent{}); err != nil {
		t.Fatalf("record slot update: %v", err)
	}
	if s.refreshes != 0 {
		t.Fatalf("unsupported events must not reach the sink")
	}
}
