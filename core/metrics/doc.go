// Package metrics defines the observability event types emitted by the
// schedule core and the sink interfaces infrastructure adapters implement.
// Core packages depend only on these interfaces, never on a concrete
// backend.
package metrics
