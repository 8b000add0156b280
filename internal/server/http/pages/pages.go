// Package pages holds the server rendered HTML shells of the dashboard.
package pages

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

const (
	Landing   = "landing.html"
	SignIn    = "signin.html"
	Dashboard = "dashboard.html"
)

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.ParseFS(files, "templates/*.html"))
}

// Reason returns the sign-in banner text for a redirect reason.
func Reason(code string) string {
	switch code {
	case "session_expired":
		return "Your session has expired. Please sign in again."
	case "oauth_failed":
		return "Google sign-in did not complete. Please try again."
	case "oauth_unavailable":
		return "Google sign-in is not available right now."
	default:
		return ""
	}
}
