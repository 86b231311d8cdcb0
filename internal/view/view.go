// Package view holds the templ components served to the browser.
package view

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

// datastarScript is the client runtime the reminders page loads.
const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// ReminderElementID returns the DOM id of a notification fragment.
func ReminderElementID(reminderID string) string {
	return "reminder-" + reminderID
}
