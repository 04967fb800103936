// Package schedule implements live-plan resolution for the monitoring
// dashboard: it caches upcoming plans fetched from the scheduling API,
// decides which single plan is live at any moment, maps that plan's
// assignments onto numbered display slots and tracks operator overrides.
// Resolution is recomputed from scratch on every query so that edits and
// refreshes take effect without invalidation logic.
package schedule
