package main

import (
	"context"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/astroview/internal/auth"
	"github.com/briangreenhill/astroview/internal/config"
	"github.com/briangreenhill/astroview/internal/email"
	"github.com/briangreenhill/astroview/internal/jobs"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "worker").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && level != zerolog.NoLevel {
		logger = logger.Level(level)
	}
	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("REDIS_ADDR is required to run the worker")
	}

	var sender email.Sender = email.StdoutSender{Logger: &logger}
	if cfg.HasSMTP() {
		sender = email.NewSMTPSender(cfg.SMTPAddr(), cfg.Email.From).WithAuth(cfg.Email.User, cfg.Email.Password)
	}
	welcome := &jobs.WelcomeHandler{
		Sender: sender,
		Unsubscribe: auth.UnsubscribeLink{
			Secret:  []byte(cfg.UnsubscribeSecret),
			BaseURL: cfg.PublicAPIURL(),
		},
		AppURL: cfg.BaseURL,
	}

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, asynq.Config{
		Concurrency: 4,
		Queues: map[string]int{
			jobs.QueueMail: 10,
			"default":      1,
		},
		BaseContext: func() context.Context { return logger.WithContext(context.Background()) },
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Error().Err(err).
				Str("task", t.Type()).
				Int("retry", retried).
				Int("max_retry", maxRetry).
				Msg("task failed")
		}),
		ShutdownTimeout: 30 * time.Second,
	})
	mux := asynq.NewServeMux()
	mux.Handle(jobs.TaskSendWelcome, welcome)

	logger.Info().Str("redis", cfg.RedisAddr).Bool("smtp", cfg.HasSMTP()).Msg("worker running")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
}
