package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	apidevices "github.com/stagewatch/stagewatch/api/devices"
	apihistory "github.com/stagewatch/stagewatch/api/history"
	apiplans "github.com/stagewatch/stagewatch/api/plans"
	"github.com/stagewatch/stagewatch/config"
	"github.com/stagewatch/stagewatch/core/devicestatus"
	coremetrics "github.com/stagewatch/stagewatch/core/metrics"
	"github.com/stagewatch/stagewatch/core/schedule"
	"github.com/stagewatch/stagewatch/core/schedule/history"
	"github.com/stagewatch/stagewatch/infra/logger"
	"github.com/stagewatch/stagewatch/infra/metrics"
	"github.com/stagewatch/stagewatch/infra/mqtt"
	"github.com/stagewatch/stagewatch/internal/eventbus"
	"github.com/stagewatch/stagewatch/jobs/refresher"
	"github.com/stagewatch/stagewatch/planning"
)

// Service wires the schedule coordinator, the refresh job and the outward
// surfaces together.
type Service struct {
	Coordinator *schedule.Coordinator
	Devices     devicestatus.Store

	bus       *eventbus.TypedBus[schedule.LiveChange]
	hist      history.Store
	publisher mqtt.Publisher
	job       *refresher.Refresher
	srv       *http.Server
	log       logger.Logger

	promEnabled bool
	promAddr    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	applyLogLevel(cfg.Logging.Level)
	logg := logger.New("service")

	hist, err := newHistoryStore(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	source := planning.NewClient(cfg.Planning, cfg.Schedule.LeadHoursByType(), cfg.Schedule.DefaultLeadHours, logger.New("planning"))
	bus := eventbus.NewTyped[schedule.LiveChange]()
	coord := schedule.New(schedule.Options{
		Source:       source,
		ServiceTypes: cfg.Schedule.ServiceTypes,
		WindowDays:   cfg.Schedule.WindowDays,
		Location:     cfg.Schedule.Location(),
		Bus:          bus,
		Sink:         sink,
		History:      hist,
		Log:          logger.New("schedule"),
	})

	svc := &Service{
		Coordinator: coord,
		Devices:     devicestatus.NewMemoryStore(),
		bus:         bus,
		hist:        hist,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promAddr:    fmt.Sprintf(":%d", promPort(cfg.Metrics.PrometheusPort)),
	}

	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT.Config)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}

	svc.job = refresher.New(coord,
		time.Duration(cfg.Schedule.RefreshMinutes)*time.Minute,
		time.Duration(cfg.Schedule.LiveCheckSeconds)*time.Second,
		cfg.Schedule.Location(),
		logger.New("refresher"))

	mux := http.NewServeMux()
	mux.Handle("/api/plans/upcoming", apiplans.NewUpcomingHandler(coord))
	mux.Handle("/api/plans/current", apiplans.NewCurrentHandler(coord))
	mux.Handle("/api/plans/manual", apiplans.NewManualHandler(coord))
	mux.Handle("/api/slots/current", apiplans.NewCurrentSlotsHandler(coord))
	mux.Handle("/api/slots/overrides", apiplans.NewSlotOverridesHandler(coord))
	mux.Handle("/api/schedule/refresh", apiplans.NewRefreshHandler(coord))
	mux.Handle("/api/history", apihistory.NewHandler(hist, cfg.Server.Token))
	mux.Handle("/api/devices/status", apidevices.NewStatusHandler(svc.Devices, sink))
	svc.srv = &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	return svc, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.job.Run(ctx)
	if s.publisher != nil {
		go s.pushLoop(ctx)
	}
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()
	s.log.Infof("listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// pushLoop forwards live changes from the bus to the display transport.
func (s *Service) pushLoop(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			planID := ""
			if ev.Current.Plan != nil {
				planID = ev.Current.Plan.PlanID
			}
			if err := s.publisher.PublishSlots(planID, ev.Slots); err != nil {
				s.log.Errorf("publish slots: %v", err)
			}
			payload := mqtt.LivePayload{PlanID: planID, Manual: ev.Current.IsManual, Live: ev.Current.Plan != nil, At: ev.At}
			if ev.Current.Plan != nil {
				payload.Title = ev.Current.Plan.Title
				payload.ServiceTime = ev.Current.Plan.ServiceTime
			}
			if err := s.publisher.PublishLive(payload); err != nil {
				s.log.Errorf("publish live state: %v", err)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	s.bus.Close()
	if s.hist != nil {
		return s.hist.Close()
	}
	return nil
}

func newHistoryStore(cfg config.HistoryConfig) (history.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return history.NewSQLiteStore(cfg.Path)
	default:
		if cfg.MaxSizeMB > 0 {
			return history.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return history.NewJSONLStore(cfg.Path)
	}
}

func applyLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func promPort(p int) int {
	if p <= 0 {
		return 9090
	}
	return p
}
