package schedule

import "github.com/stagewatch/stagewatch/core/model"

// MapSlots maps a plan's assignments onto numbered display slots using the
// service type's reuse rules. For each rule the first assignment in plan
// order whose team and position match and whose status is confirmed or
// accepted wins; planning data can contain duplicate position fills and the
// first one is the authoritative occupant. Slots with no eligible match are
// omitted entirely: an absent slot tells the display layer to leave its
// current value alone, while an empty string would clear it.
//
// A zero-value config (no rules configured yet) yields an empty mapping;
// that is a normal setup state, not an error.
func MapSlots(plan model.PlanRecord, cfg model.ServiceTypeConfig) map[int]string {
	rules, _ := cfg.DedupedRules()
	out := make(map[int]string, len(rules))
	for slot, rule := range rules {
		team := model.NormalizeName(rule.TeamName)
		position := model.NormalizeName(rule.PositionName)
		for _, a := range plan.Assignments {
			if !a.Status.Eligible() || a.PersonName == "" {
				continue
			}
			if model.NormalizeName(a.PositionName) != position {
				continue
			}
			if team != "" && model.NormalizeName(a.TeamName) != team {
				continue
			}
			out[slot] = a.PersonName
			break
		}
	}
	return out
}
