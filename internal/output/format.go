package output

import (
	"fmt"

	"github.com/crimson-sun/authwatch/internal/model"
)

// TimeLayout is the audit log timestamp format.
const TimeLayout = "2006-01-02 15:04:05"

// FormatAlert renders an alert as a single audit line without the trailing newline:
//
//	[2026-03-01 08:30:00] ALERT: Failed SSH attempt | user=admin ip=10.0.0.5 | ...
func FormatAlert(a model.Alert) string {
	return fmt.Sprintf("[%s] ALERT: %s | %s", a.Timestamp.UTC().Format(TimeLayout), a.Title, a.Body)
}

// Message joins title and body the way chat channels display them.
func Message(title, body string) string {
	return title + "\n" + body
}
