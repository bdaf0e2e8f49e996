// Package auth signs and verifies the links sent in notification mail
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultUnsubscribeTTL is how long a link in a mail stays valid
const DefaultUnsubscribeTTL = 90 * 24 * time.Hour

var (
	ErrBadToken   = errors.New("bad token")
	ErrBadSig     = errors.New("invalid signature")
	ErrExpired    = errors.New("expired")
	ErrBadPayload = errors.New("bad payload")
	ErrNoSecret   = errors.New("unsubscribe links are not configured")
)

// UnsubscribeLink builds one-click unsubscribe URLs carrying an HMAC of the
// address and an expiry.
type UnsubscribeLink struct {
	Secret  []byte
	BaseURL string // public URL of the API, e.g. http://localhost:3001
	now     func() time.Time
}

func (u UnsubscribeLink) clock() time.Time {
	if u.now != nil {
		return u.now()
	}
	return time.Now()
}

// Enabled reports whether links can be signed
func (u UnsubscribeLink) Enabled() bool {
	return len(u.Secret) > 0
}

func (u UnsubscribeLink) mac(msg []byte) []byte {
	m := hmac.New(sha256.New, u.Secret)
	m.Write(msg)
	return m.Sum(nil)
}

// Sign uses unpadded URL-safe base64 for both parts
func (u UnsubscribeLink) Sign(email string, exp time.Time) string {
	msg := []byte(email + "|" + strconv.FormatInt(exp.Unix(), 10))
	return base64.RawURLEncoding.EncodeToString(msg) + "." + base64.RawURLEncoding.EncodeToString(u.mac(msg))
}

// Verify returns the address a valid, unexpired token was issued for
func (u UnsubscribeLink) Verify(token string) (string, error) {
	if !u.Enabled() {
		return "", ErrNoSecret
	}
	payload, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrBadToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrBadToken
	}
	gotSig, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", ErrBadToken
	}
	if !hmac.Equal(gotSig, u.mac(raw)) {
		return "", ErrBadSig
	}

	email, ts, ok := strings.Cut(string(raw), "|")
	email = strings.TrimSpace(email)
	if !ok || email == "" {
		return "", ErrBadPayload
	}
	exp, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", ErrBadPayload
	}
	if u.clock().After(time.Unix(exp, 0)) {
		return "", ErrExpired
	}
	return email, nil
}

// URL returns the unsubscribe link for email, or "" when signing is disabled
func (u UnsubscribeLink) URL(email string, ttl time.Duration) string {
	if !u.Enabled() {
		return ""
	}
	if ttl <= 0 {
		ttl = DefaultUnsubscribeTTL
	}
	base, err := url.Parse(u.BaseURL)
	if err != nil {
		return ""
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + "/api/notifications/unsubscribe"
	base.RawQuery = url.Values{"token": {u.Sign(email, u.clock().Add(ttl))}}.Encode()
	return base.String()
}
