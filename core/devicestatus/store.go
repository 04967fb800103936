package devicestatus

import (
	"sort"
	"sync"
	"time"
)

// Status captures the last known state of one receiver channel. The poller
// feeding this store is external; the service only holds and serves
// snapshots.
type Status struct {
	DeviceID    string    `json:"device_id"`
	ChannelName string    `json:"channel_name,omitempty"`
	Slot        int       `json:"slot,omitempty"`
	Band        string    `json:"band,omitempty"`
	Battery     int       `json:"battery"`
	RFLevel     int       `json:"rf_level"`
	AudioLevel  int       `json:"audio_level"`
	Online      bool      `json:"online"`
	LastSeen    time.Time `json:"last_seen"`
}

// Filter narrows listings.
type Filter struct {
	DeviceID string
	Band     string
	Slot     int
}

// Store holds receiver channel snapshots.
type Store interface {
	Set(Status)
	List(Filter) []Status
	MarkOffline(deviceID string, at time.Time)
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]Status{}}
}

func (s *MemoryStore) Set(st Status) {
	s.mu.Lock()
	s.data[st.DeviceID] = st
	s.mu.Unlock()
}

// MarkOffline flags a device the poller stopped hearing from.
func (s *MemoryStore) MarkOffline(deviceID string, at time.Time) {
	s.mu.Lock()
	st := s.data[deviceID]
	if st.DeviceID == "" {
		st.DeviceID = deviceID
	}
	st.Online = false
	st.LastSeen = at
	s.data[deviceID] = st
	s.mu.Unlock()
}

func (s *MemoryStore) List(f Filter) []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Status, 0, len(s.data))
	for _, st := range s.data {
		if f.DeviceID != "" && st.DeviceID != f.DeviceID {
			continue
		}
		if f.Band != "" && st.Band != f.Band {
			continue
		}
		if f.Slot != 0 && st.Slot != f.Slot {
			continue
		}
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].DeviceID < res[j].DeviceID })
	return res
}
