package schedule

import (
	"testing"

	"github.com/stagewatch/stagewatch/core/model"
)

func vocalPlan() model.PlanRecord {
	return model.PlanRecord{
		PlanID: "p1",
		Assignments: []model.Assignment{
			{TeamName: "Band", PositionName: "Worship Leader", PersonName: "Ann", Status: model.StatusConfirmed},
			{TeamName: "Band", PositionName: "Vocals 1", PersonName: "Bob", Status: model.StatusDeclined},
			{TeamName: "Band", PositionName: "Vocals 1", PersonName: "Cat", Status: model.StatusAccepted},
			{TeamName: "Band", PositionName: "Vocals 2", PersonName: "Dan", Status: model.StatusUnconfirmed},
			{TeamName: "Tech", PositionName: "Worship Leader", PersonName: "Eve", Status: model.StatusConfirmed},
		},
	}
}

func vocalConfig() model.ServiceTypeConfig {
	return model.ServiceTypeConfig{
		ServiceTypeID: "st1",
		ReuseRules: []model.ReuseRule{
			{Slot: 1, TeamName: "Band", PositionName: "Worship Leader"},
			{Slot: 2, PositionName: "Vocals 1"},
			{Slot: 3, PositionName: "Vocals 2"},
			{Slot: 4, PositionName: "Acoustic Guitar"},
		},
	}
}

func TestMapSlots(t *testing.T) {
	got := MapSlots(vocalPlan(), vocalConfig())

	if got[1] != "Ann" {
		t.Errorf("slot 1 = %q, want Ann", got[1])
	}
	// declined Bob is skipped, accepted Cat wins
	if got[2] != "Cat" {
		t.Errorf("slot 2 = %q, want Cat", got[2])
	}
	// unconfirmed Dan and unfilled guitar stay absent, never empty strings
	for _, slot := range []int{3, 4} {
		if v, ok := got[slot]; ok {
			t.Errorf("slot %d should be absent, got %q", slot, v)
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 mapped slots, got %d: %v", len(got), got)
	}
}

func TestMapSlotsTeamFilter(t *testing.T) {
	cfg := model.ServiceTypeConfig{
		ServiceTypeID: "st1",
		ReuseRules:    []model.ReuseRule{{Slot: 1, TeamName: "Tech", PositionName: "Worship Leader"}},
	}
	got := MapSlots(vocalPlan(), cfg)
	if got[1] != "Eve" {
		t.Fatalf("slot 1 = %q, want Eve from the Tech team", got[1])
	}
}

func TestMapSlotsFirstEligibleWins(t *testing.T) {
	plan := model.PlanRecord{
		PlanID: "p1",
		Assignments: []model.Assignment{
			{PositionName: "Vocals 1", PersonName: "First", Status: model.StatusConfirmed},
			{PositionName: "Vocals 1", PersonName: "Second", Status: model.StatusConfirmed},
		},
	}
	cfg := model.ServiceTypeConfig{
		ServiceTypeID: "st1",
		ReuseRules:    []model.ReuseRule{{Slot: 1, PositionName: "Vocals 1"}},
	}
	if got := MapSlots(plan, cfg); got[1] != "First" {
		t.Fatalf("slot 1 = %q, want the first eligible assignment", got[1])
	}
}

func TestMapSlotsNormalizesNames(t *testing.T) {
	plan := model.PlanRecord{
		PlanID: "p1",
		Assignments: []model.Assignment{
			{PositionName: "MIc-1", PersonName: "Ann", Status: model.StatusConfirmed},
		},
	}
	cfg := model.ServiceTypeConfig{
		ServiceTypeID: "st1",
		ReuseRules:    []model.ReuseRule{{Slot: 5, PositionName: "Mic 1"}},
	}
	if got := MapSlots(plan, cfg); got[5] != "Ann" {
		t.Fatalf("slot 5 = %q, want Ann via normalized position match", got[5])
	}
}

func TestMapSlotsNoConfig(t *testing.T) {
	got := MapSlots(vocalPlan(), model.ServiceTypeConfig{})
	if len(got) != 0 {
		t.Fatalf("missing configuration must map to empty, got %v", got)
	}
}

func TestMapSlotsDuplicateRuleLastWins(t *testing.T) {
	cfg := model.ServiceTypeConfig{
		ServiceTypeID: "st1",
		ReuseRules: []model.ReuseRule{
			{Slot: 1, PositionName: "Worship Leader"},
			{Slot: 1, PositionName: "Vocals 1"},
		},
	}
	if got := MapSlots(vocalPlan(), cfg); got[1] != "Cat" {
		t.Fatalf("slot 1 = %q, want the later rule's match", got[1])
	}
}
