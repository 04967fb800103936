package devices

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/stagewatch/stagewatch/core/devicestatus"
	coremetrics "github.com/stagewatch/stagewatch/core/metrics"
)

// NewStatusHandler returns an HTTP handler for receiver channel status.
// GET /api/devices/status lists known channels; POST lets an external
// receiver poller report a snapshot. sink may be nil when metrics are off.
func NewStatusHandler(store devicestatus.Store, sink coremetrics.MetricsSink) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			f := devicestatus.Filter{
				DeviceID: r.URL.Query().Get("device_id"),
				Band:     r.URL.Query().Get("band"),
			}
			if s := r.URL.Query().Get("slot"); s != "" {
				if n, err := strconv.Atoi(s); err == nil {
					f.Slot = n
				}
			}
			entries := store.List(f)
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(entries); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		case http.MethodPost:
			var st devicestatus.Status
			if err := json.NewDecoder(r.Body).Decode(&st); err != nil || st.DeviceID == "" {
				http.Error(w, "device_id is required", http.StatusBadRequest)
				return
			}
			if st.LastSeen.IsZero() {
				st.LastSeen = time.Now()
			}
			store.Set(st)
			if rec, ok := sink.(coremetrics.DeviceStateRecorder); ok {
				_ = rec.RecordDeviceState(coremetrics.DeviceStateEvent{
					DeviceID: st.DeviceID,
					Channel:  st.ChannelName,
					Battery:  st.Battery,
					RF:       st.RFLevel,
					Audio:    st.AudioLevel,
					Time:     st.LastSeen,
				})
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}
