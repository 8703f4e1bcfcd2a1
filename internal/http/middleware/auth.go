package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wolfman30/doctors-portal/internal/auth"
	"github.com/wolfman30/doctors-portal/internal/http/respond"
	"github.com/wolfman30/doctors-portal/internal/observability/metrics"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

const (
	msgUnauthorized   = "UnAuthorized User"
	msgInvalidToken   = "Forbidden User Access"
	msgForbiddenAdmin = "Forbidden Access"
)

// TokenVerifier checks a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// RoleChecker reports whether an email belongs to an admin.
type RoleChecker interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// RequireBearer verifies the Authorization header and stores the claims on the
// request context. No header is 401; anything unverifiable is 403.
func RequireBearer(tokens TokenVerifier, m *metrics.PortalMetrics) func(http.Handler) http.Handler {
	if tokens == nil {
		panic("middleware: token verifier required")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				m.ObserveAuthRejection("missing")
				respond.Message(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}
			raw, ok := bearerToken(header)
			if !ok {
				m.ObserveAuthRejection("invalid")
				respond.Message(w, http.StatusForbidden, msgInvalidToken)
				return
			}
			claims, err := tokens.Verify(raw)
			if err != nil {
				m.ObserveAuthRejection("invalid")
				respond.Message(w, http.StatusForbidden, msgInvalidToken)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin must run after RequireBearer. It looks up the caller's role and
// rejects anyone who is not an admin.
func RequireAdmin(roles RoleChecker, logger *logging.Logger, m *metrics.PortalMetrics) func(http.Handler) http.Handler {
	if roles == nil {
		panic("middleware: role checker required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := auth.EmailFromContext(r.Context())
			if !ok {
				m.ObserveAuthRejection("forbidden")
				respond.Message(w, http.StatusForbidden, msgForbiddenAdmin)
				return
			}
			admin, err := roles.IsAdmin(r.Context(), email)
			if err != nil {
				logger.Error("admin lookup failed", "email", email, "error", err)
				respond.InternalError(w)
				return
			}
			if !admin {
				m.ObserveAuthRejection("forbidden")
				respond.Message(w, http.StatusForbidden, msgForbiddenAdmin)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
