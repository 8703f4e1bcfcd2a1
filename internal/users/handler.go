package users

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/doctors-portal/internal/http/respond"
	"github.com/wolfman30/doctors-portal/internal/store"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

// TokenIssuer issues a bearer token for an email.
type TokenIssuer interface {
	Issue(email string) (string, error)
}

// Handler handles HTTP requests for users
type Handler struct {
	repo   Repository
	tokens TokenIssuer
	logger *logging.Logger
}

// NewHandler creates a new users handler
func NewHandler(repo Repository, tokens TokenIssuer, logger *logging.Logger) *Handler {
	if repo == nil || tokens == nil {
		panic("users: repository and token issuer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, tokens: tokens, logger: logger}
}

// UpsertResponse is the PUT /user/{email} body.
type UpsertResponse struct {
	Result *store.UpdateResult `json:"result"`
	Token  string              `json:"token"`
}

// AdminResponse is the GET /admin/{email} body.
type AdminResponse struct {
	Admin bool `json:"admin"`
}

// ListUsers handles GET /user.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		respond.InternalError(w)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// UpsertUser handles PUT /user/{email}: stores the profile and returns a
// fresh token for that email. The route is unauthenticated.
func (h *Handler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	email, err := emailParam(r)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "invalid email")
		return
	}

	profile := store.Document{}
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("failed to decode user profile", "error", err)
		respond.Message(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.repo.Upsert(r.Context(), email, profile)
	if err != nil {
		if errors.Is(err, ErrMissingEmail) {
			respond.Message(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to upsert user", "error", err)
		respond.InternalError(w)
		return
	}

	token, err := h.tokens.Issue(email)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err)
		respond.InternalError(w)
		return
	}
	respond.JSON(w, http.StatusOK, UpsertResponse{Result: result, Token: token})
}

// CheckAdmin handles GET /admin/{email}. It is a read-only lookup and needs
// no token.
func (h *Handler) CheckAdmin(w http.ResponseWriter, r *http.Request) {
	email, err := emailParam(r)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "invalid email")
		return
	}
	isAdmin, err := h.repo.IsAdmin(r.Context(), email)
	if err != nil {
		h.logger.Error("failed to check admin role", "error", err)
		respond.InternalError(w)
		return
	}
	respond.JSON(w, http.StatusOK, AdminResponse{Admin: isAdmin})
}

// GrantAdmin handles PUT /user/admin/{email}. The admin gate runs first.
func (h *Handler) GrantAdmin(w http.ResponseWriter, r *http.Request) {
	email, err := emailParam(r)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "invalid email")
		return
	}
	result, err := h.repo.GrantAdmin(r.Context(), email)
	if err != nil {
		if errors.Is(err, ErrMissingEmail) {
			respond.Message(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to grant admin", "error", err)
		respond.InternalError(w)
		return
	}
	h.logger.Info("admin role granted", "matched", result.MatchedCount)
	respond.JSON(w, http.StatusOK, result)
}

// emailParam returns the {email} path segment, percent-decoded.
func emailParam(r *http.Request) (string, error) {
	return url.PathUnescape(chi.URLParam(r, "email"))
}
