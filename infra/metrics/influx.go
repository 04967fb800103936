package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/stagewatch/stagewatch/core/metrics"
	"github.com/stagewatch/stagewatch/infra/logger"
)

// InfluxSink writes schedule events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRefresh writes one refresh cycle as a point.
func (s *InfluxSink) RecordRefresh(ev coremetrics.RefreshEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_refresh").
		AddTag("component", ev.Component).
		AddTag("failed", strconv.FormatBool(ev.Failed)).
		AddField("plan_count", ev.PlanCount).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	if ev.Generation != "" {
		p = p.AddTag("generation", ev.Generation)
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordLivePlan writes a live plan transition.
func (s *InfluxSink) RecordLivePlan(ev coremetrics.LivePlanEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("live_plan_change").
		AddTag("manual", strconv.FormatBool(ev.Manual)).
		AddField("plan_id", ev.PlanID).
		AddField("service_type_id", ev.ServiceTypeID).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSlotUpdate writes one slot name update.
func (s *InfluxSink) RecordSlotUpdate(ev coremetrics.SlotUpdateEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("slot_update").
		AddTag("slot", strconv.Itoa(ev.Slot)).
		AddTag("cleared", strconv.FormatBool(ev.Cleared)).
		AddField("plan_id", ev.PlanID).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDeviceState writes a receiver channel snapshot.
func (s *InfluxSink) RecordDeviceState(ev coremetrics.DeviceStateEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("receiver_state").
		AddTag("device_id", ev.DeviceID).
		AddTag("channel", ev.Channel).
		AddField("battery", ev.Battery).
		AddField("rf_level", ev.RF).
		AddField("audio_level", ev.Audio).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}
