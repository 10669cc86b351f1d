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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"combinepulse/internal/cache"
	"combinepulse/internal/config"
	"combinepulse/internal/dashboard"
	"combinepulse/internal/dataset"
	apierrors "combinepulse/internal/errors"
	"combinepulse/internal/infrastructure"
	custommw "combinepulse/internal/middleware"
	"combinepulse/internal/repository/postgres"
	"combinepulse/internal/services"
	handlers "combinepulse/internal/transport/http"
	ws "combinepulse/internal/websocket"
	"combinepulse/pkg/contracts"
)

// AppName is the name the service announces in logs
const AppName = "Combine Pulse"

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.BusinessMetrics
	ErrorHandler     *apierrors.ErrorHandler
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	WebSocketHub     *ws.Hub

	viewCache cache.ViewCache
	db        *gorm.DB
	upgrader  websocket.Upgrader
}

// NewApplication loads the configuration and builds the application from it
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(context.Background(), cfg, logger)
}

// New builds the application from an already loaded configuration. Nothing
// is served until Start.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("data_source", cfg.Data.Source))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, err
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
	}

	if err := app.initializeServices(ctx); err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the dataset source, the view cache and the
// services on top of them
func (a *Application) initializeServices(ctx context.Context) error {
	source, err := a.openSource()
	if err != nil {
		return err
	}

	a.viewCache = cache.Noop{}
	var redisCache *cache.RedisCache
	if a.Config.Cache.Enabled {
		redisCache, err = cache.NewRedisCache(ctx, a.Config.Cache, a.Logger)
		if err != nil {
			// rendering works without the cache
			a.Logger.WarnContext(ctx, "view cache unavailable, continuing without it",
				slog.String("addr", a.Config.Cache.Addr),
				slog.String("error", err.Error()))
		} else {
			a.viewCache = redisCache
		}
	}

	policy := dashboard.Policy{
		TopPicks:               a.Config.Dashboard.TopPicks,
		SkipSentinelPercentile: a.Config.Dashboard.SkipSentinelPercentile,
	}
	a.DashboardService = services.NewDashboardService(source, a.viewCache, a.Metrics, policy, a.Logger)

	a.WebSocketHub = ws.NewHub(a.DashboardService, a.Config.WebSocket, a.Metrics, a.Logger)
	a.DashboardService.OnReload(a.WebSocketHub.BroadcastDatasetReloaded)

	a.HealthService = services.NewHealthService(a.DashboardService, a.Logger)
	if pinger, ok := source.(services.Pinger); ok {
		a.HealthService.AddCheck("database", pinger)
	}
	if redisCache != nil {
		a.HealthService.AddCheck("cache", redisCache)
	}

	a.upgrader = websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin:     a.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			a.Logger.WarnContext(r.Context(), "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			http.Error(w, http.StatusText(status), status)
		},
	}

	return nil
}

// openSource selects the dataset source named by the configuration
func (a *Application) openSource() (dataset.Source, error) {
	switch a.Config.Data.Source {
	case config.SourcePostgres:
		db, err := postgres.NewConnection(a.Config.Database.URL, a.Config.Database.LogLevel)
		if err != nil {
			return nil, err
		}
		a.db = db
		return postgres.NewCombineRepository(db, a.Logger), nil

	default:
		path, err := config.ResolvePath("", a.Config.Data.Path)
		if err != nil {
			return nil, err
		}
		return &dataset.FileSource{
			Path:   path,
			Sheet:  a.Config.Data.Sheet,
			Loader: dataset.NewLoader(a.Logger),
		}, nil
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware that does not wrap the ResponseWriter, so the
	// WebSocket upgrade keeps working
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Get("/ws/dashboard", a.handleWebSocket)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		r.Use(custommw.Tracing(a.Config.Telemetry.ServiceName))
		r.Use(custommw.Metrics(a.Metrics))
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
		r.Use(custommw.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(custommw.CORS(a.Config.Security))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Prometheus scrape endpoint, outside the middleware group
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(a.Config.Server.RequestTimeout))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, custommw.NewRequestValidator(), a.Logger, a.ErrorHandler)
		dashboardHandler.RegisterRoutes(r)

		admin := custommw.APIKeyAuth(a.Config.Security.AdminAPIKey, a.Logger, a.ErrorHandler)
		datasetHandler := handlers.NewDatasetHandler(a.DashboardService, a.Logger, a.ErrorHandler)
		r.Mount("/dataset", datasetHandler.Routes(admin))
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start loads the dataset, starts the hub and begins serving. A failed first
// load is not fatal: readiness reports it until a reload succeeds.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.GetFullVersionString()),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	info, err := a.DashboardService.Reload(ctx)
	if err != nil {
		infrastructure.WithError(a.Logger, err).WarnContext(ctx, "Initial dataset load failed",
			slog.String("source", a.DashboardService.String()))
	} else {
		a.Logger.InfoContext(ctx, "Dataset loaded",
			slog.String("source", info.Source),
			slog.Int("drafted", info.Drafted),
			slog.Int("year_from", info.YearFrom),
			slog.Int("year_to", info.YearTo))
	}

	a.WebSocketHub.Start()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop shuts the server down and releases every resource
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.WebSocketHub.Stop()
	a.closeStores()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

func (a *Application) closeStores() {
	if a.viewCache != nil {
		if err := a.viewCache.Close(); err != nil {
			infrastructure.WithError(a.Logger, err).Error("Error closing view cache")
		}
	}
	if a.db != nil {
		if err := postgres.Close(a.db); err != nil {
			infrastructure.WithError(a.Logger, err).Error("Error closing database")
		}
	}
}

// Run starts the application and blocks until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}

// checkOrigin accepts requests without an Origin header and origins listed
// in the security configuration
func (a *Application) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range a.Config.Security.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	a.Logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
		slog.String("origin", origin),
		slog.Any("allowed_origins", a.Config.Security.AllowedOrigins))
	return false
}

// handleWebSocket upgrades a dashboard session and hands it to the hub
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	ctx := r.Context()
	if reqID != "" {
		ctx = infrastructure.WithTraceID(ctx, reqID)
	}
	ctx = infrastructure.EnsureTraceID(ctx)
	traceID := infrastructure.GetTraceID(ctx)

	a.Logger.InfoContext(ctx, "WebSocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")),
		slog.String("user_agent", r.UserAgent()))

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		return
	}

	client := ws.NewClient(a.WebSocketHub, conn, traceID)
	a.WebSocketHub.Register(client)

	a.Logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("client_id", client.ID()),
		slog.String("request_id", reqID),
		slog.String("trace_id", traceID))

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				a.Logger.ErrorContext(ctx, "WebSocket write pump panic",
					slog.Any("panic", rec),
					slog.String("request_id", reqID))
			}
		}()
		client.WritePump()
	}()

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				a.Logger.ErrorContext(ctx, "WebSocket read pump panic",
					slog.Any("panic", rec),
					slog.String("request_id", reqID))
			}
		}()
		client.ReadPump()
	}()
}
