package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sync outcomes
const (
	OutcomeDelivered  = "delivered"
	OutcomeFallback   = "fallback"
	OutcomeSuppressed = "suppressed"
	OutcomeStale      = "stale"
)

// Collector holds the application counters. A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	syncs       *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec
	flapChecks  *prometheus.CounterVec
	alerts      *prometheus.CounterVec
	audioCues   prometheus.Counter
	meetings    prometheus.Gauge
}

// NewCollector creates a collector backed by its own registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetwatch_sync_total",
			Help: "Sync ticks by outcome",
		}, []string{"outcome"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetwatch_fetch_errors_total",
			Help: "Feed fetch failures by kind",
		}, []string{"kind"}),
		flapChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetwatch_flap_checks_total",
			Help: "Suspected done to active regressions by verification result",
		}, []string{"result"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetwatch_alerts_fired_total",
			Help: "Alerts fired by threshold label",
		}, []string{"label"}),
		audioCues: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetwatch_audio_cues_total",
			Help: "Audio cues played",
		}),
		meetings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "meetwatch_meetings",
			Help: "Meetings in the last delivered snapshot",
		}),
	}

	c.registry.MustRegister(c.syncs, c.fetchErrors, c.flapChecks, c.alerts, c.audioCues, c.meetings)
	return c
}

// Registry exposes the underlying registry, mostly for tests
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) SyncOutcome(outcome string) {
	if c == nil {
		return
	}
	c.syncs.WithLabelValues(outcome).Inc()
}

func (c *Collector) FetchError(kind string) {
	if c == nil {
		return
	}
	c.fetchErrors.WithLabelValues(kind).Inc()
}

func (c *Collector) FlapCheck(confirmed bool) {
	if c == nil {
		return
	}
	result := "rejected"
	if confirmed {
		result = "confirmed"
	}
	c.flapChecks.WithLabelValues(result).Inc()
}

func (c *Collector) AlertFired(label string) {
	if c == nil {
		return
	}
	c.alerts.WithLabelValues(label).Inc()
}

func (c *Collector) AudioCuePlayed() {
	if c == nil {
		return
	}
	c.audioCues.Inc()
}

func (c *Collector) SnapshotSize(n int) {
	if c == nil {
		return
	}
	c.meetings.Set(float64(n))
}

// Serve exposes /metrics on addr until ctx is cancelled
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("[METRICS] Serving Prometheus metrics on %s/metrics", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
