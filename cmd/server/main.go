package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appdashboard "github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/application/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/application/directory"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/application/review"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/dashboard"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/backend"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/cache"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/config"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/event"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/logger"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/persistence"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/scheduler"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/storage"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/telemetry"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/interfaces/http/handler"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/interfaces/http/middleware"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/interfaces/http/router"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting dairy dashboard",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdown(log, "meter provider", meterProvider.Shutdown)

	metrics, err := telemetry.NewDashboardMetrics(telemetry.DashboardMetricsConfig{
		Meter:  meterProvider.Meter("dairy-dashboard"),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to create dashboard metrics", zap.Error(err))
	}

	// Upstream backend
	client, err := backend.NewClient(backend.ClientConfig{
		BaseURL:   cfg.Upstream.BaseURL,
		AuthToken: cfg.Upstream.AuthToken,
		Timeout:   cfg.Upstream.Timeout,
		UserAgent: cfg.App.Name + "/" + version,
	}, &backend.RetryConfig{
		MaxRetries: cfg.Upstream.MaxRetries,
		RetryDelay: cfg.Upstream.RetryBaseDelay,
		MaxDelay:   cfg.Upstream.RetryMaxDelay,
		Multiplier: 2.0,
	}, log)
	if err != nil {
		log.Fatal("Failed to create upstream client", zap.Error(err))
	}
	gateway := backend.NewGateway(client, backend.WithCustomerFetchLimit(cfg.Dashboard.CustomerFetchLimit))

	healthHandler := handler.NewHealthHandler(version)

	// Optional review audit database
	var db *persistence.Database
	if cfg.Database.Enabled {
		db, err = persistence.NewDatabase(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
		healthHandler.AddCheck("database", func(context.Context) error { return db.Ping() })
		log.Info("Database connected successfully")
	}

	// Action lock store
	lockStore := newActionLockStore(cfg, log)
	defer func() {
		if err := lockStore.Close(); err != nil {
			log.Error("Error closing action lock store", zap.Error(err))
		}
	}()
	if redisStore, ok := lockStore.(*cache.RedisActionLockStore); ok {
		healthHandler.AddCheck("redis", func(ctx context.Context) error {
			return redisStore.GetClient().Ping(ctx).Err()
		})
	}

	// Dashboard
	weekStart, _ := cfg.Dashboard.WeekStartDay()
	location, _ := cfg.Dashboard.Location()
	resolver := dashboard.NewDateRangeResolver(dashboard.SystemClock(),
		dashboard.WithWeekStart(weekStart),
		dashboard.WithLocation(location),
	)
	aggregator := appdashboard.NewMetricAggregator(gateway, gateway, gateway,
		appdashboard.WithSourceTimeout(cfg.Dashboard.SourceTimeout),
		appdashboard.WithAggregatorLogger(log),
		appdashboard.WithAggregatorMetrics(metrics),
	)
	dashboardService := appdashboard.NewDashboardService(resolver, aggregator, log)

	archive, err := storage.NewArchive(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize snapshot archive", zap.Error(err))
	}
	dashboardService.SetArchive(archive, func(t time.Time) string {
		return storage.SnapshotKey(cfg.Storage.Prefix, t, uuid.New())
	})

	// Event bus: reviewed quantity updates refresh the dashboard
	var busOpts []event.BusOption
	if cfg.Event.AsyncDispatch {
		busOpts = append(busOpts, event.WithAsyncDispatch())
	}
	eventBus := event.NewInMemoryEventBus(log, busOpts...)
	reviewRefresher := appdashboard.NewReviewEventHandler(dashboardService, log)
	eventBus.Subscribe(reviewRefresher, reviewRefresher.EventTypes()...)
	log.Info("Event handlers registered",
		zap.Strings("review_refresh_events", reviewRefresher.EventTypes()),
	)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer shutdown(log, "event bus", eventBus.Stop)

	// Review engine
	reviewEngine := review.NewEngine(gateway, dashboardService, log)
	reviewEngine.SetEventPublisher(eventBus)
	reviewEngine.SetMetrics(metrics)
	reviewEngine.SetActionLock(lockStore, shared.ActionLockConfig{
		TTL:     cfg.Review.LockTTL,
		Enabled: cfg.Review.LockEnabled,
	})
	if cfg.Review.AuditEnabled && db != nil {
		reviewEngine.SetAuditRepository(persistence.NewReviewAuditRepository(db.DB))
		log.Info("Review audit log enabled")
	}

	// Directory sessions share one bulk delete pace
	deleteLimiter := rate.NewLimiter(rate.Limit(cfg.Directory.BulkDeleteRate), cfg.Directory.BulkDeleteBurst)
	sessions := directory.NewSessionManager(func() *directory.Controller {
		return directory.NewController(gateway, directory.Options{
			PageSize:      cfg.Directory.DefaultPageSize,
			Debounce:      cfg.Directory.DebounceDelay,
			FetchTimeout:  cfg.Upstream.Timeout,
			DeleteLimiter: deleteLimiter,
			Metrics:       metrics,
			Logger:        log,
		})
	}, cfg.Directory.SessionTTL, log)
	sessions.Start(ctx, time.Minute)
	defer sessions.Stop()

	// Initial load; failures are already defaulted per source
	if _, err := dashboardService.SelectWindow(ctx, dashboard.WindowToday, nil); err != nil {
		log.Warn("Initial dashboard load failed", zap.Error(err))
	}

	// Scheduled refresh and archive
	if cfg.Scheduler.Enabled {
		jobScheduler, trigger := startScheduler(ctx, cfg, appdashboard.NewJobs(dashboardService, metrics, log), log)
		defer shutdown(log, "scheduler", jobScheduler.Stop)
		defer shutdown(log, "scheduler trigger", trigger.Stop)
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Actor())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       meterProvider.IsEnabled(),
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		rateLimiter.StartCleanup(cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	router.Mount(engine, router.Handlers{
		Health:         healthHandler,
		Dashboard:      handler.NewDashboardHandler(dashboardService),
		QuantityUpdate: handler.NewQuantityUpdateHandler(dashboardService, reviewEngine),
		Customer:       handler.NewCustomerHandler(gateway, cfg.Directory.DefaultPageSize),
		Directory:      handler.NewDirectoryHandler(sessions),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newActionLockStore uses Redis when enabled, falling back to memory when it is unreachable
func newActionLockStore(cfg *config.Config, log *zap.Logger) shared.ActionLockStore {
	factory := cache.NewActionLockStoreFactory(cfg.Redis, cache.WithLogger(log))
	if !cfg.Redis.Enabled {
		log.Info("Redis disabled, using in-memory action locks")
		return factory.CreateInMemoryStore()
	}
	store, err := factory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create action lock store", zap.Error(err))
	}
	return store
}

func startScheduler(ctx context.Context, cfg *config.Config, executor scheduler.JobExecutor, log *zap.Logger) (*scheduler.Scheduler, *scheduler.Trigger) {
	jobScheduler := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Enabled:           cfg.Scheduler.Enabled,
		MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		JobTimeout:        cfg.Scheduler.JobTimeout,
		RetryAttempts:     cfg.Scheduler.RetryAttempts,
		RetryDelay:        cfg.Scheduler.RetryDelay,
	}, executor, log)
	if err := jobScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	hour, minute, err := scheduler.ParseCronSchedule(cfg.Scheduler.ArchiveCronSchedule)
	if err != nil {
		log.Fatal("Invalid archive schedule", zap.String("schedule", cfg.Scheduler.ArchiveCronSchedule), zap.Error(err))
	}
	trigger := scheduler.NewTrigger(scheduler.TriggerConfig{
		RefreshInterval: cfg.Scheduler.RefreshInterval,
		ArchiveEnabled:  cfg.Scheduler.ArchiveEnabled,
		ArchiveHour:     hour,
		ArchiveMinute:   minute,
		CheckInterval:   time.Minute,
	}, jobScheduler, log)
	if err := trigger.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler trigger", zap.Error(err))
	}

	log.Info("Dashboard scheduler started",
		zap.Duration("refresh_interval", cfg.Scheduler.RefreshInterval),
		zap.Bool("archive_enabled", cfg.Scheduler.ArchiveEnabled),
		zap.Int("archive_hour", hour),
		zap.Int("archive_minute", minute),
	)
	return jobScheduler, trigger
}

// shutdown runs a component's stop function with a bounded context
func shutdown(log *zap.Logger, name string, stop func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := stop(ctx); err != nil {
		log.Error("Error stopping "+name, zap.Error(err))
	}
}
