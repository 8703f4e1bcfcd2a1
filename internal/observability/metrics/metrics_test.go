package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestPortalMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPortalMetrics(reg)
	m.ObserveBooking("created")
	m.ObserveBooking("created")
	m.ObserveBooking("duplicate")
	m.ObserveMail("sent")
	m.ObserveAuthRejection("missing")
	m.ObserveAvailability(0.25)

	if got := testutil.ToFloat64(m.bookingsTotal.WithLabelValues("created")); got != 2 {
		t.Fatalf("expected 2 created bookings, got %v", got)
	}
	if got := testutil.ToFloat64(m.bookingsTotal.WithLabelValues("duplicate")); got != 1 {
		t.Fatalf("expected 1 duplicate booking, got %v", got)
	}
	if got := testutil.ToFloat64(m.mailTotal.WithLabelValues("sent")); got != 1 {
		t.Fatalf("expected 1 sent mail, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var hist *dto.Histogram
	for _, fam := range families {
		if fam.GetName() == "portal_appointments_availability_seconds" {
			hist = fam.GetMetric()[0].GetHistogram()
		}
	}
	if hist == nil || hist.GetSampleCount() != 1 {
		t.Fatalf("expected one availability sample, got %v", hist)
	}
}

func TestPortalMetricsDefaultRegistry(t *testing.T) {
	m := NewPortalMetrics(nil)
	t.Cleanup(func() {
		prometheus.DefaultRegisterer.Unregister(m.bookingsTotal)
		prometheus.DefaultRegisterer.Unregister(m.availabilityLatency)
		prometheus.DefaultRegisterer.Unregister(m.mailTotal)
		prometheus.DefaultRegisterer.Unregister(m.authRejections)
	})
	m.ObserveAuthRejection("invalid")
}

func TestPortalMetricsNilSafe(t *testing.T) {
	var m *PortalMetrics
	m.ObserveBooking("created")
	m.ObserveAvailability(0.1)
	m.ObserveMail("failed")
	m.ObserveAuthRejection("forbidden")
}
