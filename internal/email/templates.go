package email

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Links shared by every template
type Links struct {
	AppURL         string
	UnsubscribeURL string
}

// Topic is one alert category listed in the welcome mail
type Topic struct {
	Title       string
	Description string
	Color       string
}

var welcomeTopics = []Topic{
	{"🛰️ ISS Passes", "Real-time tracking when the International Space Station passes over your location", "#4F9CF7"},
	{"🌙 Moon Phases", "Full moons, new moons, and special lunar events", "#FFB800"},
	{"🪐 Planet Visibility", "When Mars, Jupiter, Venus, and Saturn are visible in your night sky", "#7C5CFC"},
	{"🌌 Aurora & Solar Events", "Solar flares, geomagnetic storms, and aurora borealis forecasts", "#00E676"},
}

// Event is a sky event announced to subscribers
type Event struct {
	Name                string
	Type                string // "ISS Pass", "Moon Phase", ...
	Date                time.Time
	Description         string
	Visibility          string
	ViewingInstructions string
}

type eventStyle struct{ icon, color string }

var eventStyles = map[string]eventStyle{
	"ISS Pass":      {"🛰️", "#4F9CF7"},
	"Moon Phase":    {"🌙", "#FFB800"},
	"Planet":        {"🪐", "#7C5CFC"},
	"Solar Event":   {"☀️", "#FF5252"},
	"Aurora":        {"🌌", "#00E676"},
	"Meteor Shower": {"☄️", "#4F9CF7"},
	"Eclipse":       {"🌑", "#9AA0A6"},
	"Conjunction":   {"✨", "#FFB800"},
}

// WelcomeSubject is the subject line of the subscription confirmation
const WelcomeSubject = "🎉 Welcome to AstroView Alerts - Subscription Confirmed!"

// Welcome renders the subscription confirmation
func Welcome(address string, links Links) (string, error) {
	return render("welcome", struct {
		Links
		Email  string
		Topics []Topic
	}{links, address, welcomeTopics})
}

// EventSubject returns the subject line announcing ev
func EventSubject(ev Event) string {
	return "🚀 Upcoming Space Event: " + ev.Name
}

// EventNotification renders the announcement of an upcoming event
func EventNotification(ev Event, links Links) (string, error) {
	style, ok := eventStyles[ev.Type]
	if !ok {
		style = eventStyle{"🚀", "#4F9CF7"}
	}
	return render("event", struct {
		Links
		Event Event
		Icon  string
		Color string
		When  string
	}{links, ev, style.icon, style.color, ev.Date.UTC().Format("Monday, January 2, 2006 at 15:04 MST")})
}

// TestEvent is the sample event sent by the test-mail endpoint
func TestEvent(now time.Time) Event {
	return Event{
		Name:                "ISS Pass Over Your Location",
		Type:                "ISS Pass",
		Date:                now.Add(24 * time.Hour),
		Description:         "The International Space Station will pass over your location tomorrow evening. This is a test notification from AstroView to verify your email settings are working correctly.",
		Visibility:          "Visible to the naked eye",
		ViewingInstructions: "Look towards the northwestern sky around 7:30 PM local time. The ISS will appear as a bright, fast-moving star. It will be visible for approximately 4-6 minutes.",
	}
}

func render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return sb.String(), nil
}
