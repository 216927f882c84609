package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/metric"

	"descstats/internal/config"
	apperrors "descstats/internal/errors"
	"descstats/internal/infrastructure"
	customMiddleware "descstats/internal/middleware"
	"descstats/internal/services"
	handlers "descstats/internal/transport/http"
	"descstats/internal/websocket"
	"descstats/pkg/contracts"
)

// AppName is logged at startup
const AppName = "statsweb"

// Application represents the report browser
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	ReportService *services.ReportService
	HealthService *services.HealthService
	Hub           *websocket.Hub

	watcher        *services.ReportWatcher
	stopWatcher    context.CancelFunc
	errorHandler   *apperrors.ErrorHandler
	runtimeMetrics metric.Registration
	startTime      time.Time
}

// NewApplication wires services, router and server. The caller owns the
// logger and the OpenTelemetry providers; Stop shuts the providers down.
func NewApplication(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	if cfg == nil {
		return nil, apperrors.NewConfigError("configuration is required", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if providers == nil {
		return nil, apperrors.NewConfigError("telemetry providers are required", nil)
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		ReportService: services.NewReportService(paths, logger),
		HealthService: services.NewHealthService(paths),
		errorHandler:  apperrors.NewErrorHandler(logger, false, customMiddleware.GetRequestID),
		startTime:     time.Now(),
	}

	app.Hub, err = websocket.NewHub(infrastructure.WithComponent(logger, "websocket"), providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create websocket hub: %w", err)
	}
	if cfg.Server.ReportPoll > 0 {
		app.watcher = services.NewReportWatcher(paths, app.Hub, cfg.Server.ReportPoll, infrastructure.WithComponent(logger, "report_watcher"))
	}

	app.runtimeMetrics, err = infrastructure.RegisterRuntimeMetrics(providers.Meter, app.startTime)
	if err != nil {
		return nil, fmt.Errorf("failed to register runtime metrics: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		return nil, err
	}
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}

	r.Group(func(r chi.Router) {
		r.Use(otelMiddleware.Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(middleware.Timeout(a.Config.Server.WriteTimeout))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Server.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Server.RateLimit.RPS,
				a.Config.Server.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupStaticRoutes(r)
	})

	// Scrapes stay outside the group so they are neither rate limited nor counted
	r.Method(http.MethodGet, "/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.errorHandler))

	// The upgrade needs the raw connection, which the group's writers hide
	r.Get("/api/ws", websocket.Handler(a.Hub, infrastructure.WithComponent(a.Logger, "websocket")))

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/version", healthHandler.Version)

		reportsHandler := handlers.NewReportsHandler(a.ReportService, a.Logger, a.errorHandler)
		r.Mount("/reports", reportsHandler.Routes())
		r.Get("/figures", reportsHandler.ListFigures)
	})
}

// setupStaticRoutes serves the index page and the rendered figure tree
func (a *Application) setupStaticRoutes(r chi.Router) {
	r.Get("/", handlers.ServeIndex(a.ReportService, a.Logger))

	figures := http.StripPrefix("/figures/", http.FileServer(http.Dir(a.Paths.FiguresDir)))
	r.Get("/figures/*", figures.ServeHTTP)
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start begins serving on a background goroutine. A listener failure is
// logged and cancels the run through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln, cancel)
}

// Serve is Start on an existing listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", ln.Addr().String()),
		slog.String("output_dir", a.Paths.OutputDir),
		slog.String("figures_dir", a.Paths.FiguresDir),
	)

	a.Hub.Start()
	if a.watcher != nil {
		watchCtx, stop := context.WithCancel(ctx)
		a.stopWatcher = stop
		go a.watcher.Run(watchCtx)
	}

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			if cancel != nil {
				cancel()
			}
		}
	}()

	a.logStartupWarnings(ctx)
	return nil
}

// logStartupWarnings reports engines whose JSON output is missing
func (a *Application) logStartupWarnings(ctx context.Context) {
	for _, engine := range config.ReportEngines {
		path, err := a.Paths.GetReportJSONPath(engine)
		if err != nil {
			continue
		}
		if !config.FileExists(path) {
			a.Logger.WarnContext(ctx, "Report not generated yet",
				slog.String("engine", engine),
				slog.String("path", path))
		}
	}
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application",
		slog.Int("websocket_clients", a.Hub.ClientCount()))

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if a.stopWatcher != nil {
		a.stopWatcher()
	}
	// hijacked websocket connections are not tracked by Shutdown
	a.Hub.Stop()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.runtimeMetrics != nil {
		if err := a.runtimeMetrics.Unregister(); err != nil {
			a.Logger.WarnContext(ctx, "Error unregistering runtime metrics", slog.String("error", err.Error()))
		}
	}

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Duration("uptime", time.Since(a.startTime)))
	return nil
}

// Run serves until SIGINT, SIGTERM, ctx cancellation or a server failure,
// then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
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
	}

	// the parent context may already be cancelled; shutdown still gets its timeout
	return a.Stop(context.WithoutCancel(ctx))
}
