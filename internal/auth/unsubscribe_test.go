package auth

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newLink() UnsubscribeLink {
	return UnsubscribeLink{Secret: []byte("s3cret"), BaseURL: "http://localhost:3001"}
}

func TestSignVerify(t *testing.T) {
	l := newLink()
	tok := l.Sign("a@b.co", time.Now().Add(time.Hour))

	email, err := l.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "a@b.co", email)
}

func TestVerifyRejects(t *testing.T) {
	l := newLink()
	valid := l.Sign("a@b.co", time.Now().Add(time.Hour))
	payload, _, _ := strings.Cut(valid, ".")

	other := UnsubscribeLink{Secret: []byte("other")}
	forged := other.Sign("a@b.co", time.Now().Add(time.Hour))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"no separator", "abc", ErrBadToken},
		{"bad base64", "!!!.???", ErrBadToken},
		{"wrong key", forged, ErrBadSig},
		{"truncated sig", payload + ".AAAA", ErrBadSig},
		{"expired", l.Sign("a@b.co", time.Now().Add(-time.Minute)), ErrExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Verify(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerifyDisabled(t *testing.T) {
	_, err := UnsubscribeLink{}.Verify("x.y")
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestURL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLink()
	l.now = func() time.Time { return now }

	raw := l.URL("a@b.co", 0)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "/api/notifications/unsubscribe", u.Path)

	tok := u.Query().Get("token")
	require.NotEmpty(t, tok)
	email, err := l.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "a@b.co", email)

	// default lifetime applies
	l.now = func() time.Time { return now.Add(DefaultUnsubscribeTTL + time.Second) }
	_, err = l.Verify(tok)
	require.ErrorIs(t, err, ErrExpired)
}

func TestURLDisabled(t *testing.T) {
	require.Empty(t, UnsubscribeLink{BaseURL: "http://x"}.URL("a@b.co", time.Hour))
}
