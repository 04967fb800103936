package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/stagewatch/stagewatch/core/metrics"
)

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	if err := sink.RecordRefresh(coremetrics.RefreshEvent{PlanCount: 3, Duration: 50 * time.Millisecond}); err != nil {
		t.Fatalf("record refresh: %v", err)
	}
	if err := sink.RecordRefresh(coremetrics.RefreshEvent{Failed: true}); err != nil {
		t.Fatalf("record failed refresh: %v", err)
	}
	rec, ok := sink.(coremetrics.LivePlanRecorder)
	if !ok {
		t.Fatal("prom sink must record live plans")
	}
	if err := rec.RecordLivePlan(coremetrics.LivePlanEvent{PlanID: "p1"}); err != nil {
		t.Fatalf("record live plan: %v", err)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{"schedule_refreshes_total", "schedule_cached_plans", "schedule_plan_live"} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestPromSinkDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second registration must reuse collectors: %v", err)
	}
}
