package mqtt

import (
	"errors"
	"sync"
	"time"
)

var errPublishFailed = errors.New("publish failed")

// LivePayload is the plan summary pushed to display clients.
type LivePayload struct {
	PlanID      string    `json:"plan_id"`
	Title       string    `json:"title,omitempty"`
	ServiceTime time.Time `json:"service_time"`
	Manual      bool      `json:"manual"`
	Live        bool      `json:"live"`
	At          time.Time `json:"at"`
}

// Publisher pushes resolved live state to display clients. planID carries
// the resolved plan, empty when no service is live, so implementations can
// tell a mid-plan omission from a plan change.
type Publisher interface {
	PublishSlots(planID string, slots map[int]string) error
	PublishLive(state LivePayload) error
	Disconnect()
}

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	PlanID    string
	Slots     map[int]string
	Live      []LivePayload
	FailSlots bool
	mu        sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Slots: make(map[int]string)}
}

// PublishSlots records the mapping or returns an error if configured to fail.
func (m *MockPublisher) PublishSlots(planID string, slots map[int]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSlots {
		return errPublishFailed
	}
	m.PlanID = planID
	m.Slots = make(map[int]string, len(slots))
	for k, v := range slots {
		m.Slots[k] = v
	}
	return nil
}

// PublishLive appends the payload to the record.
func (m *MockPublisher) PublishLive(state LivePayload) error {
	m.mu.Lock()
	m.Live = append(m.Live, state)
	m.mu.Unlock()
	return nil
}

// Disconnect is a no-op.
func (m *MockPublisher) Disconnect() {}

// LastSlots returns a copy of the most recently published mapping.
func (m *MockPublisher) LastSlots() map[int]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int]string, len(m.Slots))
	for k, v := range m.Slots {
		out[k] = v
	}
	return out
}
