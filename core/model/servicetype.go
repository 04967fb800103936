package model

import "fmt"

// ReuseRule maps a numbered display slot to the team position whose assigned
// person should be shown there.
type ReuseRule struct {
	Slot         int    `json:"slot"`
	TeamName     string `json:"team_name"`
	PositionName string `json:"position_name"`
}

// ServiceTypeConfig is the operator-defined monitoring configuration for one
// recurring service category.
type ServiceTypeConfig struct {
	ServiceTypeID string      `json:"id"`
	Name          string      `json:"name"`
	LeadTimeHours int         `json:"lead_time_hours"`
	ReuseRules    []ReuseRule `json:"reuse_rules"`
}

// Validate checks slot numbers and rule completeness.
func (c ServiceTypeConfig) Validate() error {
	if c.ServiceTypeID == "" {
		return fmt.Errorf("service type id is required")
	}
	for _, r := range c.ReuseRules {
		if r.Slot <= 0 {
			return fmt.Errorf("service type %s: slot must be positive, got %d", c.ServiceTypeID, r.Slot)
		}
		if r.PositionName == "" {
			return fmt.Errorf("service type %s: reuse rule for slot %d has no position name", c.ServiceTypeID, r.Slot)
		}
	}
	return nil
}

// DedupedRules returns the reuse rules keyed by slot. When the operator
// configured the same slot twice the later rule wins; duplicates are
// reported so the caller can warn.
func (c ServiceTypeConfig) DedupedRules() (map[int]ReuseRule, []int) {
	rules := make(map[int]ReuseRule, len(c.ReuseRules))
	var dups []int
	for _, r := range c.ReuseRules {
		if _, ok := rules[r.Slot]; ok {
			dups = append(dups, r.Slot)
		}
		rules[r.Slot] = r
	}
	return rules, dups
}
