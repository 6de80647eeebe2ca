package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector captures operational metrics emitted across the service.
//
// Implementations should be cheap to call: hooks run inline with request
// handling and cache lookups.
type Collector interface {
	ObserveUpstreamRequest(endpoint, outcome string, seconds float64)
	IncCacheHit(collection string)
	IncCacheMiss(collection string)
	IncSessionStarted()
	IncSessionEnded()
	IncAlarmMessage(outcome string)
}

type noopCollector struct{}

// Noop returns a collector that discards all metrics.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) ObserveUpstreamRequest(string, string, float64) {}
func (noopCollector) IncCacheHit(string)                             {}
func (noopCollector) IncCacheMiss(string)                            {}
func (noopCollector) IncSessionStarted()                             {}
func (noopCollector) IncSessionEnded()                               {}
func (noopCollector) IncAlarmMessage(string)                         {}

// PrometheusCollector exposes service metrics via Prometheus.
type PrometheusCollector struct {
	upstreamDuration *prometheus.HistogramVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	activeSessions   prometheus.Gauge
	alarmMessages    *prometheus.CounterVec
}

// NewPrometheusCollector registers the service metrics with the provided
// registerer and returns a collector writing to them.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fleetview",
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of requests to the telemetry platform.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "outcome"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetview",
			Name:      "cache_hits_total",
			Help:      "Telemetry cache hits per collection.",
		}, []string{"collection"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetview",
			Name:      "cache_misses_total",
			Help:      "Telemetry cache misses per collection.",
		}, []string{"collection"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fleetview",
			Name:      "active_sessions",
			Help:      "Dashboard sessions currently alive.",
		}),
		alarmMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetview",
			Name:      "alarm_messages_total",
			Help:      "Alarm push messages received over MQTT.",
		}, []string{"outcome"}),
	}

	for _, collector := range []prometheus.Collector{
		c.upstreamDuration,
		c.cacheHits,
		c.cacheMisses,
		c.activeSessions,
		c.alarmMessages,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *PrometheusCollector) ObserveUpstreamRequest(endpoint, outcome string, seconds float64) {
	c.upstreamDuration.WithLabelValues(endpoint, outcome).Observe(seconds)
}

func (c *PrometheusCollector) IncCacheHit(collection string) {
	c.cacheHits.WithLabelValues(collection).Inc()
}

func (c *PrometheusCollector) IncCacheMiss(collection string) {
	c.cacheMisses.WithLabelValues(collection).Inc()
}

func (c *PrometheusCollector) IncSessionStarted() {
	c.activeSessions.Inc()
}

func (c *PrometheusCollector) IncSessionEnded() {
	c.activeSessions.Dec()
}

func (c *PrometheusCollector) IncAlarmMessage(outcome string) {
	c.alarmMessages.WithLabelValues(outcome).Inc()
}
