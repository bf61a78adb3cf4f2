// Package metrics owns the Prometheus registry exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "noor"

// Login results.
const (
	LoginSuccess     = "success"
	LoginInvalid     = "invalid_credentials"
	LoginBadRequest  = "bad_request"
	LoginRateLimited = "rate_limited"
	LoginError       = "error"
)

// Collectors groups every metric the server records. The zero value is not
// usable; call New.
type Collectors struct {
	reg *prometheus.Registry

	logins   *prometheus.CounterVec
	reaped   *prometheus.CounterVec
	requests *prometheus.HistogramVec
}

// New registers the collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Collectors {
	reg := prometheus.NewRegistry()

	c := &Collectors{
		reg: reg,
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "login_total",
			Help:      "Admin login attempts by result.",
		}, []string{"result"}),
		reaped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "reaped_total",
			Help:      "Session rows removed, by mode.",
		}, []string{"mode"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern, method and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.logins,
		c.reaped,
		c.requests,
	)
	return c
}

// ObserveLogin counts one login attempt.
func (c *Collectors) ObserveLogin(result string) {
	if c == nil {
		return
	}
	c.logins.WithLabelValues(result).Inc()
}

// ObserveReap counts n removed sessions. It matches the session reap observer
// signature.
func (c *Collectors) ObserveReap(mode string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.reaped.WithLabelValues(mode).Add(float64(n))
}

// ObserveRequest records one served request.
func (c *Collectors) ObserveRequest(route, method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

// Registry exposes the underlying registry for tests.
func (c *Collectors) Registry() *prometheus.Registry { return c.reg }

// Handler serves the registry in the Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}
