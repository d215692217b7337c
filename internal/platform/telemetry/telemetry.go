// Package telemetry exposes Prometheus metrics for the HTTP server and the
// chart engine.
package telemetry

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ehr/trialviz/internal/engine"
)

// Provider owns the metric collectors. Each provider has its own registry
// so tests can run side by side.
type Provider struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	requestSeconds *prometheus.HistogramVec
	active         prometheus.Gauge

	chartSeconds     *prometheus.HistogramVec
	filteredEvents   *prometheus.GaugeVec
	filteredSubjects *prometheus.GaugeVec
}

func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Provider{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of in-flight HTTP requests.",
		}),
		chartSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trialviz_chart_duration_seconds",
			Help:    "Time spent filtering, grouping and aggregating one chart.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"domain", "family"}),
		filteredEvents: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trialviz_filtered_events",
			Help: "Events left after filtering, last request per domain.",
		}, []string{"domain"}),
		filteredSubjects: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trialviz_filtered_subjects",
			Help: "Subjects left after population filtering, last request per domain.",
		}, []string{"domain"}),
	}
}

func (p *Provider) ObserveChart(domain string, family engine.Family, d time.Duration) {
	p.chartSeconds.WithLabelValues(domain, string(family)).Observe(d.Seconds())
}

func (p *Provider) ObserveFiltered(domain string, events, subjects int) {
	p.filteredEvents.WithLabelValues(domain).Set(float64(events))
	p.filteredSubjects.WithLabelValues(domain).Set(float64(subjects))
}

// MetricsMiddleware returns an Echo middleware that records HTTP server metrics.
func (p *Provider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p.active.Inc()
			defer p.active.Dec()

			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo resolve the status before it is recorded.
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			p.requests.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			p.requestSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// Handler serves the registry in Prometheus text exposition format.
func (p *Provider) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
}

// Registry exposes the underlying registry, e.g. to register pool stats.
func (p *Provider) Registry() *prometheus.Registry { return p.registry }
