package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	corehistory "github.com/stagewatch/stagewatch/core/schedule/history"
)

type memStore struct {
	records []corehistory.Transition
}

func (m *memStore) Append(ctx context.Context, t corehistory.Transition) error {
	m.records = append(m.records, t)
	return nil
}

func (m *memStore) Query(ctx context.Context, q corehistory.Query) ([]corehistory.Transition, error) {
	var out []corehistory.Transition
	for _, r := range m.records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func seededStore() *memStore {
	base := time.Date(2024, 1, 7, 10, 0, 0, 0, time.UTC)
	return &memStore{records: []corehistory.Transition{
		{Timestamp: base, PlanID: "p1"},
		{Timestamp: base.Add(time.Hour), PlanID: "p2", PreviousPlanID: "p1"},
	}}
}

func TestHandlerListsTransitions(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHandler(seededStore(), "").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var got []corehistory.Transition
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
}

func TestHandlerFilters(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/history?plan_id=p2&start=2024-01-07T10:30:00Z", nil)
	NewHandler(seededStore(), "").ServeHTTP(rr, req)

	var got []corehistory.Transition
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].PlanID != "p2" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestHandlerAuth(t *testing.T) {
	h := NewHandler(seededStore(), "sekret")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rr.Code)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rr.Code)
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHandler(seededStore(), "").ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/history", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rr.Code)
	}
}
