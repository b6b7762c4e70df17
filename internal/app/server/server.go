package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kpm/internal/domain/approval"
	"kpm/internal/domain/audit"
	"kpm/internal/domain/auth"
	"kpm/internal/domain/cycle"
	"kpm/internal/domain/directory"
	"kpm/internal/domain/evaluation"
	"kpm/internal/domain/kpi"
	"kpm/internal/domain/notifications"
	"kpm/internal/domain/reports"
	"kpm/internal/platform/config"
	cryptoutil "kpm/internal/platform/crypto"
	"kpm/internal/platform/db"
	"kpm/internal/platform/email"
	"kpm/internal/platform/jobs"
	"kpm/internal/platform/metrics"
	approvalshandler "kpm/internal/transport/http/handlers/approvals"
	audithandler "kpm/internal/transport/http/handlers/audit"
	authhandler "kpm/internal/transport/http/handlers/auth"
	cycleshandler "kpm/internal/transport/http/handlers/cycles"
	directoryhandler "kpm/internal/transport/http/handlers/directory"
	evaluationshandler "kpm/internal/transport/http/handlers/evaluations"
	insightshandler "kpm/internal/transport/http/handlers/insights"
	kpishandler "kpm/internal/transport/http/handlers/kpis"
	notificationshandler "kpm/internal/transport/http/handlers/notifications"
	reportshandler "kpm/internal/transport/http/handlers/reports"
	"kpm/internal/transport/http/api"
	"kpm/internal/transport/http/middleware"
)

// App bundles the wired application: database pool, HTTP router and the
// background job runner.
type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
	Jobs   *jobs.Service
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	logger := slog.Default()
	mailer := email.New(cfg)

	directoryService := directory.NewService(directory.NewStore(pool))
	notifyService := notifications.New(notifications.NewStore(pool), mailer)
	auditService := audit.New(pool)
	authStore := auth.NewStore(pool)
	kpiService := kpi.NewService(kpi.NewStore(pool), crypto)
	approvalService := approval.NewService(approval.NewStore(pool), directoryService, logger)
	cycleService := cycle.NewService(cycle.NewStore(pool), logger)
	evaluationService := evaluation.NewService(evaluation.NewStore(pool), logger)
	reportsService := reports.NewService(reports.NewStore(pool), crypto)

	perms := auth.Permissions{}
	collector := metrics.New()
	jobRunner := jobs.New(pool, cfg, cycleService)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequirePermission(auth.PermSystemAdmin, perms)).
			Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
			})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret, crypto)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Post("/auth/refresh", authHandler.HandleRefresh)
		r.Post("/auth/request-reset", authHandler.HandleRequestReset)
		r.Post("/auth/reset", authHandler.HandleResetPassword)
		r.Post("/auth/mfa/setup", authHandler.HandleMFASetup)
		r.Post("/auth/mfa/enable", authHandler.HandleMFAEnable)
		r.Post("/auth/mfa/disable", authHandler.HandleMFADisable)

		directoryhandler.NewHandler(directoryService, perms, auditService).RegisterRoutes(r)
		cycleshandler.NewHandler(cycleService, perms, notifyService, auditService).RegisterRoutes(r)
		kpishandler.NewHandler(kpiService, approvalService, directoryService, perms, notifyService, auditService, pool).RegisterRoutes(r)
		approvalshandler.NewHandler(approvalService, kpiService, perms, notifyService, auditService).RegisterRoutes(r)
		evaluationshandler.NewHandler(evaluationService, perms, notifyService, auditService).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService, perms, auditService).RegisterRoutes(r)
		notificationshandler.NewHandler(notifyService, perms).RegisterRoutes(r)
		insightshandler.NewHandler(kpiService, perms).RegisterRoutes(r)
		audithandler.NewHandler(auditService, perms).RegisterRoutes(r)
	})

	return &App{
		Config: cfg,
		DB:     pool,
		Router: router,
		Jobs:   jobRunner,
	}, nil
}

// Close releases the database pool. Run closes it on its own shutdown
// path; Close is for callers that never reach Run, such as tests.
func (a *App) Close() {
	a.DB.Close()
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	a.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.DB.Close()
	return nil
}
