package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/astroview/internal/auth"
	"github.com/briangreenhill/astroview/internal/cache"
	"github.com/briangreenhill/astroview/internal/config"
	"github.com/briangreenhill/astroview/internal/email"
	"github.com/briangreenhill/astroview/internal/http/httperr"
	appmw "github.com/briangreenhill/astroview/internal/http/middleware"
	"github.com/briangreenhill/astroview/internal/jobs"
	"github.com/briangreenhill/astroview/internal/sources"
	"github.com/briangreenhill/astroview/internal/subscriptions"
)

// Version is reported by the info endpoints
const Version = "1.0.0"

type Server struct {
	Router      *chi.Mux
	Cache       *cache.Store
	CacheMW     *cache.Middleware
	Sources     *sources.Registry
	Errors      httperr.Writer
	Clients     Clients
	Subs        subscriptions.Store
	Jobs        jobs.Enqueuer
	Email       email.Sender
	Unsubscribe auth.UnsubscribeLink
	AppURL      string
	Metrics     *prometheus.Registry

	started time.Time
	now     func() time.Time
}

type ServerOptions struct {
	Cfg           *config.Config
	Logger        zerolog.Logger
	Cache         *cache.Store
	Clients       Clients
	Subscriptions subscriptions.Store
	Jobs          jobs.Enqueuer
	Email         email.Sender
}

// route is one endpoint of a source. A positive ttl caches its responses.
type route struct {
	name    string
	method  string
	pattern string
	ttl     time.Duration
	handler handlerFunc
}

// handlerFunc is a handler whose error is rendered by Server.Errors
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.Errors.Write(w, r, err)
		}
	}
}

func New(opts ServerOptions) *Server {
	cfg := opts.Cfg
	store := opts.Cache
	if store == nil {
		store = cache.NewStore(cache.WithSweepInterval(cfg.Cache.CheckPeriod))
	}
	mwOpts := []cache.MiddlewareOption{cache.WithDefaultTTL(cfg.Cache.DefaultTTL)}
	if cfg.Cache.Coalesce {
		mwOpts = append(mwOpts, cache.WithCoalescing())
	}

	s := &Server{
		Router:  chi.NewRouter(),
		Cache:   store,
		CacheMW: cache.NewMiddleware(store, mwOpts...),
		Sources: sources.NewRegistry(),
		Errors:  httperr.Writer{Verbose: cfg.IsDevelopment()},
		Clients: opts.Clients,
		Subs:    opts.Subscriptions,
		Jobs:    opts.Jobs,
		Email:   opts.Email,
		Unsubscribe: auth.UnsubscribeLink{
			Secret:  []byte(cfg.UnsubscribeSecret),
			BaseURL: cfg.PublicAPIURL(),
		},
		AppURL:  cfg.BaseURL,
		Metrics: prometheus.NewRegistry(),
		started: time.Now(),
		now:     time.Now,
	}
	if s.Email == nil {
		s.Email = email.StdoutSender{Logger: &opts.Logger}
	}
	if s.Jobs == nil {
		s.Jobs = jobs.InlineEnqueuer{Handler: &jobs.WelcomeHandler{
			Sender:      s.Email,
			Unsubscribe: s.Unsubscribe,
			AppURL:      s.AppURL,
		}}
	}
	httpMetrics := s.registerMetrics()

	r := s.Router
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		pattern := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		httpMetrics.observe(r.Method, pattern, status, duration)
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{cache.HeaderCache, cache.HeaderCacheTTL, "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	notFound := func(w http.ResponseWriter, r *http.Request) {
		s.Errors.Write(w, r, httperr.NotFound("Cannot "+r.Method+" "+r.URL.Path))
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("write health check response")
		}
	})
	r.Method(http.MethodGet, "/metrics", s.metricsHandler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/", s.handleIndex)

		s.mount(api, "nasa", true, s.nasaRoutes())
		s.mount(api, "satellite", s.Clients.N2YO != nil, s.satelliteRoutes())
		s.mount(api, "astronomy", s.Clients.Astronomy != nil, s.astronomyRoutes())
		s.mount(api, "weather", s.Clients.OpenWeather != nil, s.weatherRoutes())
		s.mount(api, "ai", s.Clients.Gemini != nil, s.aiRoutes())

		api.Route("/notifications", func(nr chi.Router) {
			nr.Post("/subscribe", s.handleSubscribe)
			nr.Post("/unsubscribe", s.handleUnsubscribe)
			nr.Get("/unsubscribe", s.handleUnsubscribeLink)
			nr.Post("/test", s.handleTestEmail)
			nr.With(appmw.RequireAdmin(cfg.AdminToken, s.Errors)).Get("/active", s.handleActive)
		})
		s.Sources.Register(sources.Source{
			Name:       "notifications",
			Mount:      "/api/notifications",
			Configured: true,
			Endpoints: []sources.Endpoint{
				{Name: "subscribe", Path: "/api/notifications/subscribe", Method: http.MethodPost},
				{Name: "unsubscribe", Path: "/api/notifications/unsubscribe", Method: http.MethodPost},
				{Name: "active", Path: "/api/notifications/active", Method: http.MethodGet},
				{Name: "test", Path: "/api/notifications/test", Method: http.MethodPost},
			},
		})

		api.Route("/cache", func(cr chi.Router) {
			cr.Get("/stats", s.handleCacheStats)
			cr.With(appmw.RequireAdmin(cfg.AdminToken, s.Errors)).Delete("/", s.handleCacheClear)
		})
	})

	return s
}

// mount registers a source's routes under /api/<name> and records it in the
// source registry.
func (s *Server) mount(api chi.Router, name string, configured bool, routes []route) {
	src := sources.Source{Name: name, Mount: "/api/" + name, Configured: configured}
	api.Route("/"+name, func(sr chi.Router) {
		for _, rt := range routes {
			h := http.Handler(s.wrap(rt.handler))
			if rt.ttl > 0 {
				h = s.CacheMW.Handler(rt.ttl)(h)
			}
			sr.Method(rt.method, rt.pattern, h)
			src.Endpoints = append(src.Endpoints, sources.Endpoint{
				Name:   rt.name,
				Path:   src.Mount + rt.pattern,
				Method: rt.method,
			})
		}
	})
	s.Sources.Register(src)
}
