package devices

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stagewatch/stagewatch/core/devicestatus"
)

func seededStore() *devicestatus.MemoryStore {
	s := devicestatus.NewMemoryStore()
	now := time.Now()
	s.Set(devicestatus.Status{DeviceID: "rx-1", ChannelName: "Worship Leader", Slot: 1, Band: "H50", Battery: 70, Online: true, LastSeen: now})
	s.Set(devicestatus.Status{DeviceID: "rx-2", ChannelName: "Vocals 1", Slot: 2, Band: "G50", Battery: 55, Online: true, LastSeen: now})
	return s
}

func TestStatusHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	NewStatusHandler(seededStore(), nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/devices/status", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var got []devicestatus.Status
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].DeviceID != "rx-1" {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestStatusHandlerFilters(t *testing.T) {
	rr := httptest.NewRecorder()
	NewStatusHandler(seededStore(), nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/devices/status?slot=2", nil))

	var got []devicestatus.Status
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].DeviceID != "rx-2" {
		t.Fatalf("slot filter wrong: %+v", got)
	}
}

func TestStatusHandlerMethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	NewStatusHandler(seededStore(), nil).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/devices/status", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestStatusHandlerReport(t *testing.T) {
	store := devicestatus.NewMemoryStore()
	h := NewStatusHandler(store, nil)

	rr := httptest.NewRecorder()
	body := strings.NewReader(`{"device_id":"rx-3","channel_name":"Vocals 2","slot":3,"battery":88,"online":true}`)
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/devices/status", body))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	got := store.List(devicestatus.Filter{DeviceID: "rx-3"})
	if len(got) != 1 || got[0].Battery != 88 || got[0].LastSeen.IsZero() {
		t.Fatalf("report not stored: %+v", got)
	}
}

func TestStatusHandlerReportMissingID(t *testing.T) {
	h := NewStatusHandler(devicestatus.NewMemoryStore(), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/devices/status", strings.NewReader(`{}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}
