// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/astroview/internal/cache"
	"github.com/briangreenhill/astroview/internal/config"
	"github.com/briangreenhill/astroview/internal/email"
	"github.com/briangreenhill/astroview/internal/http/routes"
	"github.com/briangreenhill/astroview/internal/jobs"
	"github.com/briangreenhill/astroview/internal/subscriptions"
	"github.com/briangreenhill/astroview/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := newLogger(cfg)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	// Cache
	store := cache.NewStore(cache.WithSweepInterval(cfg.Cache.CheckPeriod))
	go store.Run(ctx)

	// Subscriptions
	var subs subscriptions.Store
	if cfg.DatabaseURL != "" {
		pg, err := subscriptions.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("db error")
		}
		defer pg.Close()
		subs = pg
	} else {
		subs = subscriptions.NewFileStore(cfg.SubscriptionsFile)
	}

	// Mail sender
	var sender email.Sender = email.StdoutSender{Logger: &logger}
	if cfg.HasSMTP() {
		sender = email.NewSMTPSender(cfg.SMTPAddr(), cfg.Email.From).WithAuth(cfg.Email.User, cfg.Email.Password)
	}

	// Welcome mail goes through the worker when Redis is available
	var enq jobs.Enqueuer
	if cfg.RedisAddr != "" {
		ae := jobs.NewAsynqEnqueuer(cfg.RedisAddr)
		defer func() { _ = ae.Close() }()
		enq = ae
	}

	clients, err := routes.NewClients(cfg, upstream.NewHTTPClient(cfg.UpstreamTimeout))
	if err != nil {
		logger.Fatal().Err(err).Msg("upstream client setup")
	}

	s := routes.New(routes.ServerOptions{
		Cfg:           cfg,
		Logger:        logger,
		Cache:         store,
		Clients:       clients,
		Subscriptions: subs,
		Jobs:          enq,
		Email:         sender,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Environment).
		Fields(map[string]any{"sources": s.Sources.Status()}).
		Msg("starting AstroView API")

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
