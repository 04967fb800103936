package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stagewatch/stagewatch/core/model"
)

func TestCacheReplaceSortsAndStamps(t *testing.T) {
	loc := nyc(t)
	cache := NewCache()
	now := time.Date(2024, 1, 7, 8, 0, 0, 0, loc)
	later := planAt("later", time.Date(2024, 1, 7, 18, 0, 0, 0, loc), 2*time.Hour)
	earlier := planAt("earlier", time.Date(2024, 1, 7, 10, 0, 0, 0, loc), 2*time.Hour)

	snap := cache.Replace([]model.PlanRecord{later, earlier}, now)
	if len(snap.Plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(snap.Plans))
	}
	if snap.Plans[0].PlanID != "earlier" {
		t.Fatalf("plans not sorted by live time: %s first", snap.Plans[0].PlanID)
	}
	if !snap.GeneratedAt.Equal(now) {
		t.Fatalf("generated at = %s, want %s", snap.GeneratedAt, now)
	}
	if snap.Generation == "" {
		t.Fatal("generation id must be set")
	}
}

func TestCacheOldSnapshotStaysValid(t *testing.T) {
	loc := nyc(t)
	cache := NewCache()
	now := time.Now()
	cache.Replace([]model.PlanRecord{sundayPlan(loc)}, now)

	old := cache.Get()
	cache.Replace(nil, now.Add(time.Minute))

	if len(old.Plans) != 1 || old.Plans[0].PlanID != "p1" {
		t.Fatalf("held snapshot changed under the reader: %+v", old.Plans)
	}
	if got := cache.Get(); len(got.Plans) != 0 {
		t.Fatalf("new snapshot should be empty, got %d plans", len(got.Plans))
	}
	if old.Generation == cache.Get().Generation {
		t.Fatal("replace must mint a new generation")
	}
}

func TestCacheConcurrentReaders(t *testing.T) {
	loc := nyc(t)
	cache := NewCache()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := cache.Get()
				// a snapshot is all-or-nothing: either empty or fully formed
				for _, p := range snap.Plans {
					if p.PlanID == "" {
						t.Error("observed partially written plan")
						return
					}
				}
			}
		}()
	}
	for i := 0; i < 100; i++ {
		cache.Replace([]model.PlanRecord{sundayPlan(loc)}, time.Now())
	}
	close(stop)
	wg.Wait()
}

func TestSnapshotPlanByID(t *testing.T) {
	loc := nyc(t)
	cache := NewCache()
	cache.Replace([]model.PlanRecord{sundayPlan(loc)}, time.Now())

	if _, ok := cache.Get().PlanByID("p1"); !ok {
		t.Fatal("expected to find p1")
	}
	if _, ok := cache.Get().PlanByID("ghost"); ok {
		t.Fatal("unexpected hit for unknown id")
	}
}
