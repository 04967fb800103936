package plans

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stagewatch/stagewatch/core/schedule"
)

// NewUpcomingHandler returns an HTTP handler exposing the cached plans via
// GET /api/plans/upcoming. Each plan carries its derived state and slot
// mapping; current_plan_id is empty when no service is live.
func NewUpcomingHandler(coord *schedule.Coordinator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		plans, currentID := coord.UpcomingPlans(time.Now())
		snap := coord.Cache().Get()
		resp := struct {
			Plans         []schedule.AnnotatedPlan `json:"plans"`
			CurrentPlanID string                   `json:"current_plan_id,omitempty"`
			GeneratedAt   time.Time                `json:"generated_at"`
		}{Plans: plans, CurrentPlanID: currentID, GeneratedAt: snap.GeneratedAt}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewCurrentHandler exposes the resolved live plan via GET /api/plans/current.
func NewCurrentHandler(coord *schedule.Coordinator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		resolved := coord.Current(time.Now())
		resp := struct {
			Live   bool   `json:"live"`
			Manual bool   `json:"manual"`
			Plan   any    `json:"plan,omitempty"`
			PlanID string `json:"plan_id,omitempty"`
		}{Live: resolved.Plan != nil, Manual: resolved.IsManual}
		if resolved.Plan != nil {
			resp.Plan = resolved.Plan
			resp.PlanID = resolved.Plan.PlanID
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewCurrentSlotsHandler exposes the live slot mapping via GET
// /api/slots/current. Slots without an eligible assignment are absent from
// the map, never present with an empty name.
func NewCurrentSlotsHandler(coord *schedule.Coordinator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		slots := coord.CurrentSlots(time.Now())
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(struct {
			Slots map[int]string `json:"slots"`
		}{Slots: slots}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewManualHandler pins and unpins a plan via POST and DELETE on
// /api/plans/manual. Pinning an unknown plan is a 404; while a scheduled
// service is live the pin is stored but selection keeps the scheduled plan.
func NewManualHandler(coord *schedule.Coordinator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var body struct {
				PlanID string `json:"plan_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.PlanID) == "" {
				http.Error(w, "plan_id is required", http.StatusBadRequest)
				return
			}
			if err := coord.SetManualPlan(r.Context(), body.PlanID, time.Now()); err != nil {
				if errors.Is(err, schedule.ErrPlanNotFound) {
					http.Error(w, err.Error(), http.StatusNotFound)
					return
				}
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			coord.ClearManualPlan(r.Context(), time.Now())
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// NewRefreshHandler triggers an immediate schedule refresh via POST
// /api/schedule/refresh. A failed fetch keeps the previous snapshot and
// reports 503.
func NewRefreshHandler(coord *schedule.Coordinator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap, err := coord.Refresh(r.Context(), time.Now())
		if err != nil {
			if errors.Is(err, schedule.ErrSourceUnavailable) {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(struct {
			Generation  string    `json:"generation"`
			PlanCount   int       `json:"plan_count"`
			GeneratedAt time.Time `json:"generated_at"`
		}{Generation: snap.Generation, PlanCount: len(snap.Plans), GeneratedAt: snap.GeneratedAt}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewSlotOverridesHandler manages per-plan display name overrides on
// /api/slots/overrides. GET lists, POST replaces names (an empty name
// deletes that slot's override), DELETE drops the listed slots or all of
// them. The plan is addressed with the plan_id query parameter.
func NewSlotOverridesHandler(coord *schedule.Coordinator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		planID := r.URL.Query().Get("plan_id")
		if planID == "" {
			http.Error(w, "plan_id is required", http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(struct {
				Overrides map[int]string `json:"overrides"`
			}{Overrides: coord.SlotOverrides(planID)}); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		case http.MethodPost:
			var body struct {
				Names map[int]string `json:"names"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Names) == 0 {
				http.Error(w, "names is required", http.StatusBadRequest)
				return
			}
			if err := coord.SetSlotOverrides(r.Context(), planID, body.Names, time.Now()); err != nil {
				if errors.Is(err, schedule.ErrPlanNotFound) {
					http.Error(w, err.Error(), http.StatusNotFound)
					return
				}
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			var slots []int
			if s := r.URL.Query().Get("slots"); s != "" {
				for _, part := range strings.Split(s, ",") {
					n, err := strconv.Atoi(strings.TrimSpace(part))
					if err != nil {
						http.Error(w, "invalid slot number", http.StatusBadRequest)
						return
					}
					slots = append(slots, n)
				}
			}
			coord.ClearSlotOverrides(r.Context(), planID, time.Now(), slots...)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}
