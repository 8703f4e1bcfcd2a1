package router

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/doctors-portal/internal/appointments"
	"github.com/wolfman30/doctors-portal/internal/bookings"
	"github.com/wolfman30/doctors-portal/internal/doctors"
	httpmiddleware "github.com/wolfman30/doctors-portal/internal/http/middleware"
	"github.com/wolfman30/doctors-portal/internal/http/respond"
	"github.com/wolfman30/doctors-portal/internal/observability/metrics"
	"github.com/wolfman30/doctors-portal/internal/users"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

const welcomeText = "Welcome To Online Doctor Server"

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds router configuration
type Config struct {
	Logger       *logging.Logger
	Metrics      *metrics.PortalMetrics
	Appointments *appointments.Handler
	Bookings     *bookings.Handler
	Users        *users.Handler
	Doctors      *doctors.Handler

	Tokens httpmiddleware.TokenVerifier
	Roles  httpmiddleware.RoleChecker

	Store              Pinger
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	bearer := httpmiddleware.RequireBearer(cfg.Tokens, cfg.Metrics)
	admin := httpmiddleware.RequireAdmin(cfg.Roles, cfg.Logger, cfg.Metrics)
	// One limiter shared by every write route so a client cannot spread load across them.
	limited := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, welcomeText)
	})
	r.Get("/health", healthHandler(cfg.Store))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Get("/appointments", cfg.Appointments.ListAppointments)
	r.Get("/available", cfg.Appointments.Available)

	r.Get("/admin/{email}", cfg.Users.CheckAdmin)
	r.Route("/user", func(u chi.Router) {
		u.With(bearer).Get("/", cfg.Users.ListUsers)
		u.With(bearer, admin).Put("/admin/{email}", cfg.Users.GrantAdmin)
		u.With(limited).Put("/{email}", cfg.Users.UpsertUser)
	})

	r.Route("/booking", func(b chi.Router) {
		b.With(bearer).Get("/", cfg.Bookings.ListBookings)
		b.With(limited).Post("/", cfg.Bookings.CreateBooking)
	})

	r.Route("/doctors", func(d chi.Router) {
		d.Use(bearer, admin)
		d.Get("/", cfg.Doctors.ListDoctors)
		d.Post("/", cfg.Doctors.AddDoctor)
		d.Delete("/{email}", cfg.Doctors.DeleteDoctor)
	})

	return r
}

func healthHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
