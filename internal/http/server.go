package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"charitytracker/internal/auth"
	"charitytracker/internal/core"
	"charitytracker/internal/i18n"
	applog "charitytracker/internal/log"
	"charitytracker/internal/metrics"
	"charitytracker/internal/middleware/ratelimit"
	"charitytracker/internal/middleware/security"
	"charitytracker/internal/middleware/trace"
	"charitytracker/internal/services"
	appweb "charitytracker/web"
)

// maxBodyBytes bounds submission and login bodies.
const maxBodyBytes = 16 << 10

// DonationService is what the handlers need from the service layer.
type DonationService interface {
	Submit(ctx context.Context, name string, amount core.Money) (core.Donation, error)
	MonthlyAggregates(ctx context.Context) ([]core.MonthlyAggregate, error)
	MostRecent(ctx context.Context) (*core.Donation, error)
	Summary(ctx context.Context) (core.Totals, error)
	Dashboard(ctx context.Context) (services.DashboardView, error)
	Ready(ctx context.Context) error
}

// Options configures NewServer.
type Options struct {
	Service DonationService
	Gate    *auth.Gate
	Catalog *i18n.Catalog
	Logger  *applog.Logger

	// Limiter throttles POST requests; an in-process limiter allowing
	// RateLimitPerMinute is created when nil.
	Limiter            ratelimit.Allower
	RateLimitPerMinute int

	// Metrics collects Prometheus series for /metrics; created when nil.
	Metrics *metrics.Metrics

	// CORSAllowedOrigins for the JSON API; any origin when empty.
	CORSAllowedOrigins []string
	// SecureCookies marks session and language cookies Secure.
	SecureCookies bool
}

type Server struct {
	http.Server
	svc       DonationService
	gate      *auth.Gate
	catalog   *i18n.Catalog
	logger    *applog.Logger
	templates *template.Template
	metrics   *metrics.Metrics

	tracer      *trace.Middleware
	detector    *security.Detector
	limiter     *ratelimit.Middleware
	ownLimiter  *ratelimit.Limiter
	secure      bool
	shutdownOne sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, opts Options) (*Server, error) {
	if opts.Service == nil || opts.Gate == nil || opts.Catalog == nil {
		return nil, fmt.Errorf("new server: service, gate and catalog are required")
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		svc:       opts.Service,
		gate:      opts.Gate,
		catalog:   opts.Catalog,
		logger:    opts.Logger.WithComponent(applog.ComponentHTTP),
		templates: t,
		metrics:   opts.Metrics,
		detector:  security.NewDetector().WithMetrics(opts.Metrics),
		secure:    opts.SecureCookies,
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, s.logger).WithMetrics(s.metrics)

	allower := opts.Limiter
	if allower == nil {
		s.ownLimiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
		allower = s.ownLimiter
	}
	s.limiter = ratelimit.NewMiddleware(allower, s.detector.ExtractClientIP, s.onRateLimited).WithMetrics(s.metrics)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(opts.CORSAllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(s.tracer.Handler)
	r.Use(applog.Middleware(s.logger, trace.RequestID))
	r.Use(s.detector.Handler)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Handler)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", trace.HeaderRequestID},
			ExposedHeaders: []string{trace.HeaderRequestID},
			MaxAge:         300,
		}))

		r.With(s.limiter.Handler).Post("/donations", s.handleAPISubmit)
		r.Group(func(r chi.Router) {
			r.Use(s.gate.RequireAdmin, security.NoStore)
			r.Get("/donations/monthly", s.handleAPIMonthly)
			r.Get("/donations/last", s.handleAPILast)
			r.Get("/donations/summary", s.handleAPISummary)
		})
		r.With(s.limiter.Handler).Post("/admin/login", s.handleAPILogin)
		r.Post("/admin/logout", s.handleAPILogout)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.withLocale)
		r.Get("/", s.handleIndex)
		r.With(s.limiter.Handler).Post("/donate", s.handleDonate)
		r.With(security.NoStore).Get("/admin", s.handleAdmin)
		r.With(s.limiter.Handler).Post("/admin/login", s.handleAdminLogin)
		r.Post("/admin/logout", s.handleAdminLogout)
	})

	return r
}

// Shutdown gracefully shuts down the server and its limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOne.Do(func() {
		if s.ownLimiter != nil {
			s.ownLimiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}
