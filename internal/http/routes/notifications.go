package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/astroview/internal/auth"
	"github.com/briangreenhill/astroview/internal/email"
	"github.com/briangreenhill/astroview/internal/http/httperr"
	"github.com/briangreenhill/astroview/internal/subscriptions"
)

const (
	msgValidEmail   = "Valid email address is required"
	msgEmailMissing = "Email address is required"
	msgSubscribed   = "Successfully subscribed to email notifications"
	msgUnsubscribed = "Successfully unsubscribed from email notifications"
)

type emailRequest struct {
	Email string `json:"email"`
}

// readEmail decodes {"email": ...}; a malformed body reads as no address
func readEmail(r *http.Request) string {
	var req emailRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	return req.Email
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	addr, err := subscriptions.Normalize(readEmail(r))
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, message{Message: msgValidEmail})
		return
	}

	sub, isNew, err := s.Subs.Upsert(r.Context(), addr)
	if err != nil {
		s.Errors.Write(w, r, err)
		return
	}
	logger := hlog.FromRequest(r)
	logger.Info().Str("email", sub.Email).Bool("new", isNew).Msg("subscribed")

	// A failed welcome mail does not undo the subscription.
	if isNew {
		if err := s.Jobs.EnqueueWelcome(r.Context(), sub.Email); err != nil {
			logger.Error().Err(err).Str("email", sub.Email).Msg("welcome email failed")
		}
	}
	writeMessage(w, r, http.StatusOK, message{Success: true, Message: msgSubscribed, Email: sub.Email})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	addr := strings.ToLower(strings.TrimSpace(readEmail(r)))
	if addr == "" {
		writeMessage(w, r, http.StatusBadRequest, message{Message: msgEmailMissing})
		return
	}
	s.unsubscribe(w, r, addr)
}

// handleUnsubscribeLink serves the one-click link embedded in every mail
func (s *Server) handleUnsubscribeLink(w http.ResponseWriter, r *http.Request) {
	addr, err := s.Unsubscribe.Verify(r.URL.Query().Get("token"))
	switch {
	case errors.Is(err, auth.ErrNoSecret):
		s.Errors.Write(w, r, httperr.NotFound("Cannot "+r.Method+" "+r.URL.Path))
		return
	case errors.Is(err, auth.ErrExpired):
		writeMessage(w, r, http.StatusBadRequest, message{Message: "Unsubscribe link has expired"})
		return
	case err != nil:
		writeMessage(w, r, http.StatusBadRequest, message{Message: "Invalid unsubscribe link"})
		return
	}
	s.unsubscribe(w, r, addr)
}

// unsubscribe succeeds whether or not addr was subscribed
func (s *Server) unsubscribe(w http.ResponseWriter, r *http.Request, addr string) {
	removed, err := s.Subs.Remove(r.Context(), addr)
	if err != nil {
		s.Errors.Write(w, r, err)
		return
	}
	hlog.FromRequest(r).Info().Str("email", addr).Bool("removed", removed).Msg("unsubscribed")
	writeMessage(w, r, http.StatusOK, message{Success: true, Message: msgUnsubscribed})
}

type activeSubscription struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

type activeResponse struct {
	Success       bool                 `json:"success"`
	Count         int                  `json:"count"`
	Subscriptions []activeSubscription `json:"subscriptions"`
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	subs, err := s.Subs.Active(r.Context())
	if err != nil {
		s.Errors.Write(w, r, err)
		return
	}
	out := activeResponse{Success: true, Count: len(subs), Subscriptions: make([]activeSubscription, 0, len(subs))}
	for _, sub := range subs {
		out.Subscriptions = append(out.Subscriptions, activeSubscription{Email: sub.Email, SubscribedAt: sub.SubscribedAt})
	}
	writeJSON(w, out)
}

// handleTestEmail sends a sample event notification synchronously so the
// caller learns whether mail delivery works.
func (s *Server) handleTestEmail(w http.ResponseWriter, r *http.Request) {
	addr, err := subscriptions.Normalize(readEmail(r))
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, message{Message: msgValidEmail})
		return
	}

	ev := email.TestEvent(s.now())
	html, err := email.EventNotification(ev, email.Links{
		AppURL:         s.AppURL,
		UnsubscribeURL: s.Unsubscribe.URL(addr, auth.DefaultUnsubscribeTTL),
	})
	if err == nil {
		err = s.Email.Send(addr, email.EventSubject(ev), html)
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("email", addr).Msg("test email failed")
		writeMessage(w, r, http.StatusInternalServerError, message{
			Message: "Failed to send test email. Please check your email configuration.",
			Error:   err.Error(),
		})
		return
	}
	writeMessage(w, r, http.StatusOK, message{Success: true, Message: "Test email sent successfully! Check your inbox."})
}
