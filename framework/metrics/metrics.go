// Package metrics exposes dispatch and bootstrap metrics in the Prometheus
// format. Every Collector owns its registry, so several applications (or
// tests) can live in one process.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-mvc/framework/mvc"
)

// Collector holds the application's metrics. It implements mvc.Observer.
type Collector struct {
	registry *prometheus.Registry

	Dispatches *prometheus.CounterVec   // route, outcome
	Duration   *prometheus.HistogramVec // route
	Beans      prometheus.Gauge
	Routes     prometheus.Gauge
}

var _ mvc.Observer = (*Collector)(nil)

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Requests handled by the dispatcher, by route and outcome.",
			},
			[]string{"route", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Time spent dispatching a request.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		Beans: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "beans",
			Help:      "Bean names registered in the container.",
		}),
		Routes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "routes",
			Help:      "Routes in the handler mapping.",
		}),
	}
	c.registry.MustRegister(
		c.Dispatches, c.Duration, c.Beans, c.Routes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveDispatch records the outcome of one request.
func (c *Collector) ObserveDispatch(route string, final mvc.State, elapsed time.Duration) {
	c.Dispatches.WithLabelValues(route, outcome(final)).Inc()
	c.Duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func outcome(s mvc.State) string {
	switch s {
	case mvc.StateIdle:
		return "ok"
	case mvc.StateNotFound:
		return "not_found"
	case mvc.StateError:
		return "error"
	}
	return s.String()
}

// Bootstrapped records the size of the container and of the route table.
func (c *Collector) Bootstrapped(beans, routes int) {
	c.Beans.Set(float64(beans))
	c.Routes.Set(float64(routes))
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
