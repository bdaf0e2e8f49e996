package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWelcome(t *testing.T) {
	html, err := Welcome("user@example.com", Links{
		AppURL:         "http://localhost:5173/",
		UnsubscribeURL: "http://localhost:3001/api/notifications/unsubscribe?token=abc",
	})
	require.NoError(t, err)
	require.Contains(t, html, "Welcome to AstroView!")
	require.Contains(t, html, "user@example.com")
	require.Contains(t, html, "ISS Passes")
	require.Contains(t, html, `href="http://localhost:3001/api/notifications/unsubscribe?token=abc"`)
}

func TestWelcomeEscapesAddress(t *testing.T) {
	html, err := Welcome("<script>@x.io", Links{})
	require.NoError(t, err)
	require.NotContains(t, html, "<script>@x.io")
	require.Contains(t, html, "&lt;script&gt;@x.io")
}

func TestEventNotification(t *testing.T) {
	ev := TestEvent(time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC))
	require.Equal(t, "🚀 Upcoming Space Event: ISS Pass Over Your Location", EventSubject(ev))

	html, err := EventNotification(ev, Links{AppURL: "http://localhost:5173/"})
	require.NoError(t, err)
	require.Contains(t, html, "🛰️ AstroView Alert")
	require.Contains(t, html, "Sunday, June 2, 2024 at 18:00 UTC")
	require.Contains(t, html, "VIEWING INSTRUCTIONS")
	require.Contains(t, html, "Visible to the naked eye")
}

func TestEventNotificationDefaults(t *testing.T) {
	html, err := EventNotification(Event{Name: "Something", Type: "Unknown"}, Links{})
	require.NoError(t, err)
	require.Contains(t, html, "🚀 AstroView Alert")
	require.Contains(t, html, "No additional details available.")
	require.NotContains(t, html, "VIEWING INSTRUCTIONS")
}
