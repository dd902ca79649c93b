package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"punchclock/internal/domain/attendance"
	"punchclock/internal/domain/audit"
	"punchclock/internal/domain/auth"
	"punchclock/internal/platform/config"
	"punchclock/internal/platform/db"
	"punchclock/internal/platform/jobs"
	"punchclock/internal/platform/metrics"
	"punchclock/internal/platform/sheets"
	"punchclock/internal/transport/http/api"
	attendancehandler "punchclock/internal/transport/http/handlers/attendance"
	audithandler "punchclock/internal/transport/http/handlers/audit"
	"punchclock/internal/transport/http/middleware"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the pieces NewRouter mounts. Handlers may be nil in tests that
// only exercise the probes.
type Deps struct {
	Config     config.Config
	DB         Pinger
	Metrics    *metrics.Collector
	Attendance *attendancehandler.Handler
	Audit      *audithandler.Handler
}

// RulesFromConfig applies the tunable night-worker thresholds on top of the
// default rule table.
func RulesFromConfig(cfg config.Config) attendance.Rules {
	rules := attendance.DefaultRules()
	rules.NightWorker.CheckInShare = cfg.NightWorkerCheckInShare
	rules.NightWorker.MinEarlyCheckOuts = cfg.NightWorkerEarlyCheckOuts
	return rules
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(deps.Metrics))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, cfg.MaxUploadBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.DB == nil {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := deps.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && deps.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		if deps.Attendance != nil {
			deps.Attendance.RegisterRoutes(r)
		}
		if deps.Audit != nil {
			deps.Audit.RegisterRoutes(r)
		}
	})

	return router
}

// Run wires the service against PostgreSQL and serves until ctx is done.
func Run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect failed: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
	}

	collector := metrics.New()
	engine := attendance.NewEngine(
		attendance.WithRules(RulesFromConfig(cfg)),
		attendance.WithTimestampParser(sheets.TimestampParser(nil)),
		attendance.WithWorkers(cfg.ReconcileWorkers),
	)
	jobService := jobs.New(jobs.NewPGRunStore(pool))
	jobService.Start(ctx)

	auditService := audit.New(pool)
	perms := auth.NewRoleTable(auth.RolePermissions)

	attendanceHandler := attendancehandler.NewHandler(
		attendance.NewService(attendance.NewStore(pool), engine),
		engine,
		jobService,
		auditService,
		perms,
	)
	attendanceHandler.Metrics = collector
	attendanceHandler.Idempotency = middleware.NewIdempotencyStore(pool)

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: NewRouter(Deps{
			Config:     cfg,
			DB:         pool,
			Metrics:    collector,
			Attendance: attendanceHandler,
			Audit:      audithandler.NewHandler(auditService, perms),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("punchclock listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
