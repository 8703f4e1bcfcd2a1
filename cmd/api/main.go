package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/doctors-portal/cmd/mainconfig"
	"github.com/wolfman30/doctors-portal/internal/api/router"
	"github.com/wolfman30/doctors-portal/internal/app/bootstrap"
	"github.com/wolfman30/doctors-portal/internal/appointments"
	"github.com/wolfman30/doctors-portal/internal/auth"
	"github.com/wolfman30/doctors-portal/internal/bookings"
	appconfig "github.com/wolfman30/doctors-portal/internal/config"
	"github.com/wolfman30/doctors-portal/internal/doctors"
	"github.com/wolfman30/doctors-portal/internal/notify"
	"github.com/wolfman30/doctors-portal/internal/observability/metrics"
	"github.com/wolfman30/doctors-portal/internal/store"
	"github.com/wolfman30/doctors-portal/internal/users"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting doctors-portal API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store", cfg.StoreDriver,
		"mail_queue", cfg.MailQueue,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	db, err := bootstrap.BuildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logger.Warn("store close failed", "error", err)
		}
	}()

	tokens, err := buildTokenService(cfg, logger)
	if err != nil {
		return err
	}

	metricsHandler, portalMetrics := setupMetrics()

	queue, sender, closeMail, err := setupMail(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeMail()

	dispatcher := notify.NewDispatcher(queue, logger, portalMetrics)
	worker := notify.NewWorker(queue, sender, logger, portalMetrics)

	handler := buildRouter(cfg, db, tokens, dispatcher, portalMetrics, metricsHandler, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(workerCtx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stopWorker()
		wg.Wait()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	// Let in-flight enqueues land before the worker stops receiving.
	dispatcher.Wait()
	stopWorker()
	wg.Wait()
	if shutdownErr != nil {
		return fmt.Errorf("server forced to shutdown: %w", shutdownErr)
	}
	return nil
}

func buildTokenService(cfg *appconfig.Config, logger *logging.Logger) (*auth.TokenService, error) {
	secret := cfg.AccessTokenSecret
	if secret == "" {
		generated, err := auth.RandomSecret()
		if err != nil {
			return nil, err
		}
		logger.Warn("ACCESS_TOKEN_SECRET not set; using a random secret, tokens will not survive a restart")
		secret = generated
	}
	return auth.NewTokenService(secret, cfg.AccessTokenTTL)
}

func setupMetrics() (http.Handler, *metrics.PortalMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewPortalMetrics(reg)
}

func setupMail(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.Queue, notify.EmailSender, func(), error) {
	var sesClient *sesv2.Client
	var sqsClient *sqs.Client
	if bootstrap.NeedsAWS(cfg) {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		sesClient, sqsClient = mainconfig.MailClients(awsCfg, cfg)
	}

	closeFn := func() {}
	var redisClient redis.UniversalClient
	if cfg.MailQueue == "redis" {
		if c := bootstrap.BuildRedisClient(ctx, cfg, logger, true); c != nil {
			redisClient = c
			closeFn = func() { _ = c.Close() }
		}
	}

	queue, err := bootstrap.BuildMailQueue(cfg, redisClient, sqsClient)
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	sender, provider, err := bootstrap.BuildEmailSender(cfg, sesClient, logger)
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	logger.Info("mail pipeline ready", "queue", cfg.MailQueue, "provider", provider)
	return queue, sender, closeFn, nil
}

func buildRouter(
	cfg *appconfig.Config,
	db store.Store,
	tokens *auth.TokenService,
	dispatcher *notify.Dispatcher,
	m *metrics.PortalMetrics,
	metricsHandler http.Handler,
	logger *logging.Logger,
) http.Handler {
	appointmentColl := db.Collection(cfg.AppointmentCollection)
	bookingColl := db.Collection(cfg.BookingCollection)

	userRepo := users.NewStoreRepository(db.Collection(cfg.UserCollection))
	bookingService := bookings.NewService(bookings.NewStoreRepository(bookingColl), dispatcher, logger, m)

	return router.New(&router.Config{
		Logger:             logger,
		Metrics:            m,
		Appointments:       appointments.NewHandler(appointments.NewStoreRepository(appointmentColl, bookingColl), cfg.AvailabilityFallbackDate, logger, m),
		Bookings:           bookings.NewHandler(bookingService, logger),
		Users:              users.NewHandler(userRepo, tokens, logger),
		Doctors:            doctors.NewHandler(doctors.NewStoreRepository(db.Collection(cfg.DoctorCollection)), logger),
		Tokens:             tokens,
		Roles:              userRepo,
		Store:              db,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})
}
