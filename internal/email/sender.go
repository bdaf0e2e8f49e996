// Package email sends notification mail
package email

import (
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Sender interface {
	Send(to, subject, html string) error
}

// StdoutSender logs mail instead of delivering it
type StdoutSender struct {
	Logger *zerolog.Logger
}

func (s StdoutSender) Send(to, subject, html string) error {
	l := s.Logger
	if l == nil {
		l = &log.Logger
	}
	l.Info().Str("to", to).Str("subject", subject).Int("bytes", len(html)).Msg("email (not delivered)")
	l.Debug().Str("to", to).Msg(html)
	return nil
}

// SMTPSender delivers HTML mail through an SMTP relay
type SMTPSender struct {
	Addr string
	From string
	auth smtp.Auth
}

// NewSMTPSender creates a sender; empty values default to a local MailHog
func NewSMTPSender(addr, from string) *SMTPSender {
	if addr == "" {
		addr = "localhost:1025"
	}
	if from == "" {
		from = "no-reply@astroview.local"
	}
	return &SMTPSender{Addr: addr, From: from}
}

// WithAuth enables PLAIN auth. net/smtp refuses it over unencrypted
// connections to anything but localhost.
func (s *SMTPSender) WithAuth(user, password string) *SMTPSender {
	if user != "" {
		host, _, err := net.SplitHostPort(s.Addr)
		if err != nil {
			host = s.Addr
		}
		s.auth = smtp.PlainAuth("", user, password, host)
	}
	return s
}

func (s *SMTPSender) Send(to, subject, html string) error {
	if strings.TrimSpace(to) == "" {
		return errors.New("email: empty recipient")
	}
	from, err := mail.ParseAddress(s.From)
	if err != nil {
		return fmt.Errorf("email: bad from address: %w", err)
	}
	rcpt, err := mail.ParseAddress(to)
	if err != nil {
		return fmt.Errorf("email: bad recipient: %w", err)
	}

	msg := buildMessage(from, rcpt, subject, html, time.Now())
	if err := smtp.SendMail(s.Addr, s.auth, from.Address, []string{rcpt.Address}, msg); err != nil {
		return fmt.Errorf("email: send to %s: %w", rcpt.Address, err)
	}
	return nil
}

func buildMessage(from, to *mail.Address, subject, html string, now time.Time) []byte {
	var b strings.Builder
	domain := "astroview.local"
	if at := strings.LastIndex(from.Address, "@"); at >= 0 {
		domain = from.Address[at+1:]
	}
	headers := [][2]string{
		{"From", from.String()},
		{"To", to.String()},
		{"Subject", mime.QEncoding.Encode("utf-8", subject)},
		{"Date", now.Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)},
		{"MIME-Version", "1.0"},
		{"Content-Type", `text/html; charset="utf-8"`},
		{"Content-Transfer-Encoding", "8bit"},
	}
	for _, h := range headers {
		b.WriteString(h[0])
		b.WriteString(": ")
		b.WriteString(h[1])
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(html, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String())
}
