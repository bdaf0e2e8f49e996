package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/textproto"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/astroview/internal/auth"
	"github.com/briangreenhill/astroview/internal/email"
)

// WelcomeHandler renders and sends the subscription confirmation
type WelcomeHandler struct {
	Sender      email.Sender
	Unsubscribe auth.UnsubscribeLink
	AppURL      string
}

// Send delivers the welcome mail to address
func (h *WelcomeHandler) Send(ctx context.Context, address string) error {
	html, err := email.Welcome(address, email.Links{
		AppURL:         h.AppURL,
		UnsubscribeURL: h.Unsubscribe.URL(address, 0),
	})
	if err != nil {
		return err
	}
	start := time.Now()
	if err := h.Sender.Send(address, email.WelcomeSubject, html); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("to", address).Dur("duration", time.Since(start)).Msg("welcome email sent")
	return nil
}

// ProcessTask implements asynq.Handler
func (h *WelcomeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p SendWelcomePayload
	err := json.Unmarshal(t.Payload(), &p)
	if err == nil && p.Email == "" {
		err = errors.New("missing email")
	}
	if err != nil {
		// a malformed payload will never succeed
		return fmt.Errorf("bad %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	if err := h.Send(ctx, p.Email); err != nil {
		if !Retryable(err) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("to", p.Email).Msg("permanent send failure, dropping task")
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}

// Retryable reports whether a send failure may succeed later. The relay
// rejecting the message with a 5xx reply is permanent; everything else
// (dial errors, timeouts, 4xx greylisting) is retried.
func Retryable(err error) bool {
	var te *textproto.Error
	if errors.As(err, &te) {
		return te.Code < 500
	}
	return true
}

// Enqueuer schedules the welcome mail for a new subscriber
type Enqueuer interface {
	EnqueueWelcome(ctx context.Context, address string) error
}

// AsynqEnqueuer hands tasks to the worker through Redis
type AsynqEnqueuer struct {
	Client *asynq.Client
}

func NewAsynqEnqueuer(redisAddr string) *AsynqEnqueuer {
	return &AsynqEnqueuer{Client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

func (e *AsynqEnqueuer) EnqueueWelcome(ctx context.Context, address string) error {
	task, err := NewWelcomeTask(address)
	if err != nil {
		return err
	}
	info, err := e.Client.EnqueueContext(ctx, task,
		asynq.Queue(QueueMail),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TaskSendWelcome, err)
	}
	zerolog.Ctx(ctx).Info().Str("task_id", info.ID).Str("queue", info.Queue).Msg("enqueued welcome email")
	return nil
}

func (e *AsynqEnqueuer) Close() error {
	return e.Client.Close()
}

// InlineEnqueuer sends immediately, for deployments without Redis
type InlineEnqueuer struct {
	Handler *WelcomeHandler
}

func (e InlineEnqueuer) EnqueueWelcome(ctx context.Context, address string) error {
	return e.Handler.Send(ctx, address)
}

// NewWelcomeTask builds the task for address
func NewWelcomeTask(address string) (*asynq.Task, error) {
	payload, err := json.Marshal(SendWelcomePayload{Email: address})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSendWelcome, payload), nil
}
