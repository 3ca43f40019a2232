package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes counters and histograms for the booking flows and the
// HTTP surface. Every method is safe to call on a nil receiver.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	loginsTotal     *prometheus.CounterVec
	bookingsTotal   *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	lockWaits       *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saude",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "saude",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
		loginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saude",
			Subsystem: "identity",
			Name:      "logins_total",
			Help:      "Patient logins by outcome.",
		}, []string{"outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saude",
			Subsystem: "booking",
			Name:      "create_total",
			Help:      "Booking creation attempts by outcome.",
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saude",
			Subsystem: "booking",
			Name:      "status_transitions_total",
			Help:      "Booking status transitions by target status and outcome.",
		}, []string{"status", "outcome"}),
		lockWaits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saude",
			Subsystem: "lock",
			Name:      "acquire_total",
			Help:      "Lock acquisitions by outcome.",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(c.requestsTotal, c.requestDuration, c.loginsTotal, c.bookingsTotal, c.transitions, c.lockWaits)
	return c
}

func (c *Collector) ObserveRequest(method, route, status string, seconds float64) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(method, route, status).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

func (c *Collector) ObserveLogin(outcome string) {
	if c == nil {
		return
	}
	c.loginsTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) ObserveBooking(outcome string) {
	if c == nil {
		return
	}
	c.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) ObserveTransition(status, outcome string) {
	if c == nil {
		return
	}
	c.transitions.WithLabelValues(status, outcome).Inc()
}

func (c *Collector) ObserveLock(outcome string) {
	if c == nil {
		return
	}
	c.lockWaits.WithLabelValues(outcome).Inc()
}
