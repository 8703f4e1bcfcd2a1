package metrics

import "github.com/prometheus/client_golang/prometheus"

// PortalMetrics exposes counters/histograms for booking, mail and auth flows.
type PortalMetrics struct {
	bookingsTotal       *prometheus.CounterVec
	availabilityLatency prometheus.Histogram
	mailTotal           *prometheus.CounterVec
	authRejections      *prometheus.CounterVec
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "bookings",
			Name:      "total",
			Help:      "Booking requests by outcome (created, duplicate, invalid, error)",
		}, []string{"outcome"}),
		availabilityLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "appointments",
			Name:      "availability_seconds",
			Help:      "Latency of availability computation including store reads",
			Buckets:   prometheus.DefBuckets,
		}),
		mailTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "mail",
			Name:      "total",
			Help:      "Confirmation emails by status",
		}, []string{"status"}),
		authRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "auth",
			Name:      "rejections_total",
			Help:      "Rejected requests by reason (missing, invalid, forbidden)",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.availabilityLatency, m.mailTotal, m.authRejections)
	return m
}

func (m *PortalMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *PortalMetrics) ObserveAvailability(seconds float64) {
	if m == nil {
		return
	}
	m.availabilityLatency.Observe(seconds)
}

func (m *PortalMetrics) ObserveMail(status string) {
	if m == nil {
		return
	}
	m.mailTotal.WithLabelValues(status).Inc()
}

func (m *PortalMetrics) ObserveAuthRejection(reason string) {
	if m == nil {
		return
	}
	m.authRejections.WithLabelValues(reason).Inc()
}
