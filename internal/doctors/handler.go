package doctors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/doctors-portal/internal/http/respond"
	"github.com/wolfman30/doctors-portal/internal/store"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

// Handler handles HTTP requests for the doctor roster
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new doctors handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("doctors: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListDoctors handles GET /doctors
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		respond.InternalError(w)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// AddDoctor handles POST /doctors
func (h *Handler) AddDoctor(w http.ResponseWriter, r *http.Request) {
	var profile store.Document
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil || profile == nil {
		respond.Message(w, http.StatusBadRequest, "invalid request body")
		return
	}
	delete(profile, store.IDField)

	result, err := h.repo.Add(r.Context(), profile)
	if err != nil {
		h.logger.Error("failed to add doctor", "error", err)
		respond.InternalError(w)
		return
	}
	h.logger.Info("doctor added", "id", result.InsertedID)
	respond.JSON(w, http.StatusOK, result)
}

// DeleteDoctor handles DELETE /doctors/{email}
func (h *Handler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	email, err := emailParam(r)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "invalid email")
		return
	}
	result, err := h.repo.DeleteByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, ErrMissingEmail) {
			respond.Message(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to delete doctor", "error", err)
		respond.InternalError(w)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// emailParam returns the {email} path segment, percent-decoded.
func emailParam(r *http.Request) (string, error) {
	return url.PathUnescape(chi.URLParam(r, "email"))
}
