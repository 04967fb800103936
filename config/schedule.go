package config

import (
	"fmt"
	"time"

	"github.com/stagewatch/stagewatch/core/model"
)

// ScheduleConfig drives plan selection and the refresh job.
type ScheduleConfig struct {
	// ServiceTypes lists the monitored service categories and their slot
	// reuse rules.
	ServiceTypes []model.ServiceTypeConfig `json:"service_types"`
	// DefaultLeadHours is the pre-roll applied to service types without an
	// explicit lead time.
	DefaultLeadHours int `json:"default_lead_hours"`
	// WindowDays bounds how far ahead plans are cached.
	WindowDays int `json:"window_days"`
	// Timezone names the location used for day-boundary arithmetic.
	Timezone string `json:"timezone"`
	// RefreshMinutes is the periodic full refresh interval.
	RefreshMinutes int `json:"refresh_minutes"`
	// LiveCheckSeconds is the interval for re-evaluating the live window
	// between refreshes.
	LiveCheckSeconds int `json:"live_check_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ScheduleConfig) SetDefaults() {
	if c.DefaultLeadHours <= 0 {
		c.DefaultLeadHours = 2
	}
	if c.WindowDays <= 0 {
		c.WindowDays = 7
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.RefreshMinutes <= 0 {
		c.RefreshMinutes = 15
	}
	if c.LiveCheckSeconds <= 0 {
		c.LiveCheckSeconds = 30
	}
}

// Validate checks the service type definitions and the timezone.
func (c ScheduleConfig) Validate() error {
	if len(c.ServiceTypes) == 0 {
		return fmt.Errorf("at least one service type is required")
	}
	seen := make(map[string]bool, len(c.ServiceTypes))
	for _, st := range c.ServiceTypes {
		if err := st.Validate(); err != nil {
			return err
		}
		if seen[st.ServiceTypeID] {
			return fmt.Errorf("service type %s configured twice", st.ServiceTypeID)
		}
		seen[st.ServiceTypeID] = true
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone. Validate must have passed.
func (c ScheduleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LeadHoursByType returns the per-type lead hours map the plan source uses.
func (c ScheduleConfig) LeadHoursByType() map[string]int {
	out := make(map[string]int, len(c.ServiceTypes))
	for _, st := range c.ServiceTypes {
		if st.LeadTimeHours > 0 {
			out[st.ServiceTypeID] = st.LeadTimeHours
		}
	}
	return out
}
