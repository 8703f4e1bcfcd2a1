package bookings

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/doctors-portal/internal/notify"
	"github.com/wolfman30/doctors-portal/internal/observability/metrics"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

var bookingsTracer = otel.Tracer("portal.internal.bookings")

// ConfirmationDispatcher receives a confirmation to send after a booking is
// stored. Implementations must not block.
type ConfirmationDispatcher interface {
	DispatchBookingConfirmation(ctx context.Context, c notify.BookingConfirmation)
}

// Service enforces one booking per (treatment, patient, date) and persists.
// The duplicate check and the insert are separate store calls, so two
// concurrent identical requests can both be stored.
type Service struct {
	repo     Repository
	mail     ConfirmationDispatcher
	validate *validator.Validate
	logger   *logging.Logger
	metrics  *metrics.PortalMetrics
}

// NewService constructs a bookings service. mail and m may be nil.
func NewService(repo Repository, mail ConfirmationDispatcher, logger *logging.Logger, m *metrics.PortalMetrics) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, mail: mail, validate: validator.New(), logger: logger, metrics: m}
}

// Create stores b unless an equivalent booking exists. A duplicate is not an
// error: the result reports Success false and the existing booking.
func (s *Service) Create(ctx context.Context, b Booking) (*Result, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create", trace.WithAttributes(
		attribute.String("portal.treatment", b.TreatmentName),
		attribute.String("portal.date", b.Date),
	))
	defer span.End()

	if err := s.validate.Struct(b); err != nil {
		s.metrics.ObserveBooking("invalid")
		return nil, fmt.Errorf("%w: %v", ErrInvalidBooking, err)
	}

	existing, err := s.repo.FindDuplicate(ctx, b.TreatmentName, b.PatientName, b.Date)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveBooking("error")
		return nil, err
	}
	if existing != nil {
		span.SetAttributes(attribute.Bool("portal.duplicate", true))
		s.metrics.ObserveBooking("duplicate")
		s.logger.Info("duplicate booking rejected", "treatment", b.TreatmentName, "date", b.Date, "booking_id", existing.ID)
		return &Result{Success: false, Booking: existing}, nil
	}

	res, err := s.repo.Insert(ctx, b)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveBooking("error")
		return nil, err
	}
	s.metrics.ObserveBooking("created")
	s.logger.Info("booking created", "treatment", b.TreatmentName, "date", b.Date, "slot", b.Slot, "booking_id", res.InsertedID)

	if s.mail != nil {
		s.mail.DispatchBookingConfirmation(ctx, notify.BookingConfirmation{
			PatientName:   b.PatientName,
			PatientEmail:  b.PatientEmail,
			TreatmentName: b.TreatmentName,
			Date:          b.Date,
			Slot:          b.Slot,
		})
	}
	return &Result{Success: true, Result: res}, nil
}

// ListForPatient returns every booking made with email.
func (s *Service) ListForPatient(ctx context.Context, email string) ([]Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.list_for_patient")
	defer span.End()

	out, err := s.repo.ListByPatientEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}
