package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"pms/internal/platform/config"
	"pms/internal/platform/metrics"
	"pms/internal/platform/requestctx"
	"pms/internal/transport/http/api"
	audithandler "pms/internal/transport/http/handlers/audit"
	authhandler "pms/internal/transport/http/handlers/auth"
	notificationshandler "pms/internal/transport/http/handlers/notifications"
	performancehandler "pms/internal/transport/http/handlers/performance"
	reportshandler "pms/internal/transport/http/handlers/reports"
	"pms/internal/transport/http/middleware"
	"pms/internal/transport/http/shared"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the router needs. Services are interfaces so the
// router can be built without a database.
type Deps struct {
	Config        config.Config
	DB            Pinger
	Sessions      middleware.SessionResolver
	Auth          authhandler.Service
	Performance   performancehandler.Service
	Reports       reportshandler.Service
	Audit         audithandler.Service
	Auditor       shared.Auditor
	Notifications notificationshandler.Service
	Metrics       *metrics.Collector
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(deps.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(deps.Sessions))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if deps.DB == nil || deps.DB.Ping(ctx) != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot(), requestctx.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.AuthRateLimit(cfg.RateLimitPerMinute, time.Minute))

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			api.Fail(w, http.StatusNotFound, "not_found", "route not found", requestctx.GetRequestID(r.Context()))
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			api.Fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", requestctx.GetRequestID(r.Context()))
		})

		authhandler.NewHandler(deps.Auth, deps.Auditor, cfg.AllowSelfSignup, cfg.IsProduction()).RegisterRoutes(r)
		performancehandler.NewHandler(deps.Performance, deps.Auditor).RegisterRoutes(r)
		reportshandler.NewHandler(deps.Reports, nil).RegisterRoutes(r)
		audithandler.NewHandler(deps.Audit).RegisterRoutes(r)
		notificationshandler.NewHandler(deps.Notifications).RegisterRoutes(r)
	})

	if info, err := os.Stat(cfg.FrontendDir); err == nil && info.IsDir() {
		router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	}

	return router
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
