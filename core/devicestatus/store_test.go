package devicestatus

import (
	"testing"
	"time"
)

func TestMemoryStoreSetAndList(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.Set(Status{DeviceID: "rx-2", ChannelName: "Vocals 1", Slot: 2, Band: "G50", Battery: 80, Online: true, LastSeen: now})
	s.Set(Status{DeviceID: "rx-1", ChannelName: "Worship Leader", Slot: 1, Band: "H50", Battery: 60, Online: true, LastSeen: now})

	all := s.List(Filter{})
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
	if all[0].DeviceID != "rx-1" {
		t.Fatalf("listing not sorted by device id: %s first", all[0].DeviceID)
	}

	byBand := s.List(Filter{Band: "G50"})
	if len(byBand) != 1 || byBand[0].DeviceID != "rx-2" {
		t.Fatalf("band filter wrong: %+v", byBand)
	}
	bySlot := s.List(Filter{Slot: 1})
	if len(bySlot) != 1 || bySlot[0].DeviceID != "rx-1" {
		t.Fatalf("slot filter wrong: %+v", bySlot)
	}
}

func TestMemoryStoreSetOverwrites(t *testing.T) {
	s := NewMemoryStore()
	s.Set(Status{DeviceID: "rx-1", Battery: 90, Online: true})
	s.Set(Status{DeviceID: "rx-1", Battery: 40, Online: true})

	got := s.List(Filter{DeviceID: "rx-1"})
	if len(got) != 1 || got[0].Battery != 40 {
		t.Fatalf("expected overwritten entry, got %+v", got)
	}
}

func TestMarkOffline(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.Set(Status{DeviceID: "rx-1", Battery: 90, Online: true, LastSeen: now.Add(-time.Minute)})
	s.MarkOffline("rx-1", now)

	got := s.List(Filter{DeviceID: "rx-1"})
	if len(got) != 1 || got[0].Online {
		t.Fatalf("device should be offline: %+v", got)
	}
	if !got[0].LastSeen.Equal(now) {
		t.Fatalf("last seen not updated: %s", got[0].LastSeen)
	}
	if got[0].Battery != 90 {
		t.Fatalf("existing fields must survive: %+v", got[0])
	}

	// marking an unknown device creates a placeholder entry
	s.MarkOffline("rx-9", now)
	if got := s.List(Filter{DeviceID: "rx-9"}); len(got) != 1 || got[0].Online {
		t.Fatalf("unknown device should get an offline entry, got %+v", got)
	}
}
