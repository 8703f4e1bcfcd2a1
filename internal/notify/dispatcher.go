package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wolfman30/doctors-portal/internal/observability/metrics"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

const defaultEnqueueTimeout = 10 * time.Second

// mailJob is the queued payload.
type mailJob struct {
	Kind         string              `json:"kind"`
	Confirmation BookingConfirmation `json:"confirmation"`
	QueuedAt     time.Time           `json:"queuedAt"`
}

const jobKindBookingConfirmation = "booking_confirmation"

// Dispatcher enqueues confirmation emails without blocking the caller.
// Enqueue failures are logged and counted; the caller never sees them.
type Dispatcher struct {
	queue   Queue
	logger  *logging.Logger
	metrics *metrics.PortalMetrics
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher builds a dispatcher over queue. metrics may be nil.
func NewDispatcher(queue Queue, logger *logging.Logger, m *metrics.PortalMetrics) *Dispatcher {
	if queue == nil {
		panic("notify: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{queue: queue, logger: logger, metrics: m, timeout: defaultEnqueueTimeout}
}

// DispatchBookingConfirmation hands the confirmation to the queue on a
// separate goroutine. The request context's values are kept but its
// cancellation is not, so a finished request does not abort the hand-off.
func (d *Dispatcher) DispatchBookingConfirmation(ctx context.Context, c BookingConfirmation) {
	job := mailJob{Kind: jobKindBookingConfirmation, Confirmation: c, QueuedAt: time.Now().UTC()}
	detached := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()

		body, err := json.Marshal(job)
		if err != nil {
			d.logger.Error("failed to encode mail job", "error", err, "to", c.PatientEmail)
			d.metrics.ObserveMail("enqueue_failed")
			return
		}
		if err := d.queue.Send(ctx, string(body)); err != nil {
			d.logger.Error("failed to enqueue confirmation email", "error", err, "to", c.PatientEmail, "treatment", c.TreatmentName)
			d.metrics.ObserveMail("enqueue_failed")
			return
		}
		d.metrics.ObserveMail("queued")
		d.logger.Debug("confirmation email queued", "to", c.PatientEmail, "treatment", c.TreatmentName)
	}()
}

// Wait blocks until every in-flight hand-off has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
