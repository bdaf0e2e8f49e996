// Package subscriptions stores the e-mail addresses signed up for event alerts
package subscriptions

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidEmail = errors.New("valid email address is required")
	ErrNotFound     = errors.New("subscription not found")
)

// Subscription is one address signed up for notifications
type Subscription struct {
	ID           string    `json:"id,omitempty"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
	Active       bool      `json:"active"`
}

// Store persists subscriptions. Emails are normalized before they reach it.
type Store interface {
	// Upsert subscribes email, refreshing the timestamp of an existing entry.
	// The bool reports whether the address was not subscribed before.
	Upsert(ctx context.Context, email string) (Subscription, bool, error)
	// Remove drops email and reports whether it was present
	Remove(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]Subscription, error)
	Active(ctx context.Context) ([]Subscription, error)
}

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Normalize trims and lower-cases an address and checks its shape
func Normalize(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRE.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func filterActive(subs []Subscription) []Subscription {
	out := make([]Subscription, 0, len(subs))
	for _, s := range subs {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}
