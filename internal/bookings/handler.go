package bookings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/doctors-portal/internal/auth"
	"github.com/wolfman30/doctors-portal/internal/http/respond"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

const msgMissingFields = "missing required booking fields"

// Handler handles HTTP requests for bookings
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new bookings handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("bookings: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// CreateBooking handles POST /booking. Duplicates answer 200 with success false.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req Booking
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode booking", "error", err)
		respond.Message(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidBooking) {
			h.logger.Warn("rejected booking", "error", err)
			respond.Message(w, http.StatusBadRequest, msgMissingFields)
			return
		}
		h.logger.Error("failed to create booking", "error", err, "treatment", req.TreatmentName)
		respond.InternalError(w)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// ListBookings handles GET /booking?patientEmail=. The query must name the
// caller's own email.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	patientEmail := r.URL.Query().Get("patientEmail")
	callerEmail, ok := auth.EmailFromContext(r.Context())
	if !ok || patientEmail == "" || patientEmail != callerEmail {
		respond.Message(w, http.StatusForbidden, "Forbidden Access")
		return
	}

	list, err := h.service.ListForPatient(r.Context(), patientEmail)
	if err != nil {
		h.logger.Error("failed to list bookings", "error", err)
		respond.InternalError(w)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}
