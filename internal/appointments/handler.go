package appointments

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/doctors-portal/internal/http/respond"
	"github.com/wolfman30/doctors-portal/internal/observability/metrics"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

var appointmentsTracer = otel.Tracer("portal.internal.appointments")

// Handler serves the public appointment listing and availability routes.
type Handler struct {
	repo         Repository
	fallbackDate string
	logger       *logging.Logger
	metrics      *metrics.PortalMetrics
}

// NewHandler creates a handler. When fallbackDate is set it replaces a
// missing date query parameter; otherwise a missing date reports every slot
// as open.
func NewHandler(repo Repository, fallbackDate string, logger *logging.Logger, m *metrics.PortalMetrics) *Handler {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, fallbackDate: fallbackDate, logger: logger, metrics: m}
}

// ListAppointments handles GET /appointments.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.repo.ListSummaries(r.Context())
	if err != nil {
		h.logger.Error("failed to list appointment types", "error", err)
		respond.InternalError(w)
		return
	}
	respond.JSON(w, http.StatusOK, summaries)
}

// Available handles GET /available?date=.
func (h *Handler) Available(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.fallbackDate
	}

	result, err := h.available(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to compute availability", "error", err, "date", date)
		respond.InternalError(w)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

func (h *Handler) available(ctx context.Context, date string) ([]AppointmentType, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.available")
	defer span.End()
	span.SetAttributes(attribute.String("appointments.date", date))

	start := time.Now()
	defer func() { h.metrics.ObserveAvailability(time.Since(start).Seconds()) }()

	types, err := h.repo.ListTypes(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list types")
		return nil, err
	}

	// No date: nothing is matched, so every slot is reported open.
	var reservations []Reservation
	if date != "" {
		reservations, err = h.repo.ListReservations(ctx, date)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "list reservations")
			return nil, err
		}
	}
	span.SetAttributes(
		attribute.Int("appointments.types", len(types)),
		attribute.Int("appointments.reservations", len(reservations)),
	)
	return ComputeAvailability(date, types, reservations), nil
}
