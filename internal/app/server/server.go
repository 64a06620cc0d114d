package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pms/internal/domain/audit"
	"pms/internal/domain/auth"
	"pms/internal/domain/notifications"
	"pms/internal/domain/performance"
	"pms/internal/platform/config"
	cryptoutil "pms/internal/platform/crypto"
	"pms/internal/platform/db"
	"pms/internal/platform/email"
	"pms/internal/platform/jobs"
	"pms/internal/platform/metrics"
	"pms/internal/platform/seed"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Services
}

type Services struct {
	Auth          *auth.Service
	Performance   *performance.Service
	Notifications *notifications.Service
	Audit         *audit.Service
}

// NewServices builds the domain services over pool.
func NewServices(cfg config.Config, pool *pgxpool.Pool) (Services, error) {
	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return Services{}, fmt.Errorf("data encryption key: %w", err)
	}
	var svc Services
	svc.Auth = auth.NewService(auth.NewStore(pool), crypto, auth.Options{
		Secret:     cfg.JWTSecret,
		SessionTTL: cfg.SessionTTL,
		MFAIssuer:  cfg.MFAIssuer,
	})
	svc.Notifications = notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom, cfg.EmailEnabled)
	svc.Performance = performance.NewService(performance.NewStore(pool), svc.Notifications)
	svc.Audit = audit.New(pool)
	return svc, nil
}

// New connects to the database, applies migrations and the seed fixture
// when configured, and wires every service into the router. The caller owns
// the returned pool and must Close the app.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	services, err := NewServices(cfg, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	app := &App{Config: cfg, DB: pool, Metrics: metrics.New(), Services: services}
	app.Jobs = jobs.New(pool, app.Auth, app.Performance, jobs.Options{
		CleanupInterval:  cfg.SessionCleanupInterval,
		ReminderInterval: cfg.ReminderInterval,
		ReminderWindow:   cfg.ReminderWindow,
	})

	if cfg.RunSeed {
		if _, err := SeedFile(ctx, cfg.SeedFile, app.Auth, app.Performance); err != nil {
			pool.Close()
			return nil, err
		}
	}

	app.Router = NewRouter(Deps{
		Config:        cfg,
		DB:            pool,
		Sessions:      app.Auth,
		Auth:          app.Auth,
		Performance:   app.Performance,
		Reports:       app.Performance,
		Audit:         app.Audit,
		Auditor:       app.Audit,
		Notifications: app.Notifications,
		Metrics:       app.Metrics,
	})
	return app, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Serve starts background jobs and the HTTP listener, and shuts both down
// when ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	jobsCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	a.Jobs.Start(jobsCtx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("PMS server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func Run(ctx context.Context, cfg config.Config) error {
	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.Serve(ctx)
}

// SeedFile loads a fixture from path and applies it.
func SeedFile(ctx context.Context, path string, users seed.Users, goals seed.Goals) (seed.Result, error) {
	fx, err := seed.Load(path)
	if err != nil {
		return seed.Result{}, fmt.Errorf("seed: %w", err)
	}
	res, err := seed.Apply(ctx, fx, users, goals)
	if err != nil {
		return res, fmt.Errorf("seed: %w", err)
	}
	return res, nil
}
