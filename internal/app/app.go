package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	promclient "github.com/prometheus/client_golang/prometheus"

	"sheetcalc/internal/config"
	apierrors "sheetcalc/internal/errors"
	"sheetcalc/internal/exporter"
	"sheetcalc/internal/files"
	"sheetcalc/internal/infrastructure"
	customMiddleware "sheetcalc/internal/middleware"
	"sheetcalc/internal/mtm"
	"sheetcalc/internal/reports"
	"sheetcalc/internal/scheduler"
	"sheetcalc/internal/services"
	transport "sheetcalc/internal/transport/http"
	"sheetcalc/internal/validation"
	"sheetcalc/internal/weather"
	"sheetcalc/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.Metrics
	Services      *ServiceContainer
	ErrorHandler  *apierrors.ErrorHandler
	Scheduler     *scheduler.Scheduler // nil when no schedule is configured
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Valuation *services.ValuationService
	Weather   *services.WeatherService
	Health    *services.HealthService
	Reports   *reports.Runner
}

// NewApplication loads the configuration, initializes the process logger and
// builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	if err := cfg.Paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	return New(cfg, logger)
}

// New wires an application from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	otelCfg := infrastructure.NewOTelConfig(cfg.Telemetry)
	otelCfg.Registry = promclient.NewRegistry()
	otelProviders, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	tracer := a.OTelProviders.Tracer

	engine := mtm.NewEngine(a.Config.MTM, a.Logger)
	valuation := services.NewValuationService(engine, exporter.DefaultOptions(), tracer, a.Metrics, a.Logger)

	assistant := weather.NewAssistant(a.Config.Weather, a.Logger)
	weatherService := services.NewWeatherService(assistant, tracer, a.Metrics, a.Logger)

	health := services.NewHealthService(contracts.Version, a.Config.Paths, a.Logger)

	runner := reports.NewRunner(valuation, files.NewDiscovery(a.Config.Reports.InputDir), a.Logger)

	a.Services = &ServiceContainer{
		Valuation: valuation,
		Weather:   weatherService,
		Health:    health,
		Reports:   runner,
	}

	if a.Config.Reports.Schedule == "" {
		return nil
	}

	opts, err := reports.OptionsFromConfig(a.Config.Reports)
	if err != nil {
		return fmt.Errorf("invalid reports configuration: %w", err)
	}
	sched, err := scheduler.New(a.Config.Reports.Schedule, runner, opts, a.Metrics, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create report scheduler: %w", err)
	}
	a.Scheduler = sched
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Order: RequestID → RealIP → OTel → Logger → Recoverer → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewTelemetry(a.OTelProviders.Tracer, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.ErrorHandler,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	r.Method(http.MethodGet, "/metrics", transport.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	uploads := validation.NewUploadValidator(a.Config.Server.MaxUploadBytes)
	maxMemory := a.Config.Server.MaxUploadBytes

	trading := transport.NewTradingHandler(a.Services.Valuation, uploads, maxMemory, a.Logger, a.ErrorHandler)
	weatherHandler := transport.NewWeatherHandler(a.Services.Weather, uploads, maxMemory, a.Logger, a.ErrorHandler)
	health := transport.NewHealthHandler(a.Services.Health, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", health.HealthCheck)
		r.Get("/health/ready", health.ReadinessCheck)
		r.Get("/health/live", health.LivenessCheck)
		r.Get("/version", health.Version)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
			r.Use(customMiddleware.MaxBodyBytes(a.Config.Server.MaxUploadBytes))

			r.Mount("/trading", trading.Routes())
			r.Mount("/weather", weatherHandler.Routes())
		})
	})
}

// getCORSConfig returns CORS configuration for the browser frontends
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins:   a.Config.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", customMiddleware.RequestIDHeader},
		ExposedHeaders:   []string{customMiddleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server and the report scheduler. A listen failure
// calls cancel so Run can shut down instead of exiting the process.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	a.Logger.InfoContext(ctx, "Application paths",
		slog.String("data_dir", a.Config.Paths.DataDir),
		slog.String("reports_dir", a.Config.Paths.ReportsDir),
		slog.String("logs_dir", a.Config.Paths.LogsDir))

	if a.Scheduler != nil {
		if err := a.Scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start report scheduler: %w", err)
		}
		a.Logger.InfoContext(ctx, "Report scheduler started",
			slog.String("schedule", a.Config.Reports.Schedule),
			slog.Time("next_run", a.Scheduler.Next()))
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", a.Server.Addr))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			infrastructure.WithError(a.Logger, err).ErrorContext(ctx, "Error shutting down OpenTelemetry")
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted or until the server fails.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	// The run context may already be cancelled; shutdown gets a fresh one.
	return a.Stop(context.Background())
}
