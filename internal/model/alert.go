package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Alert titles.
const (
	TitleFailedLogin  = "Failed SSH attempt"
	TitleUnauthorized = "Unauthorized Access (non-whitelisted user)"
	TitleSudo         = "SUDO event"
)

// Alert is the immutable notification built from an alert-worthy Event.
type Alert struct {
	ID        string
	Title     string
	Body      string
	Timestamp time.Time // UTC
}

// NewAlert builds the Alert for ev. ok is false when ev is not alert-worthy,
// in which case no Alert exists for it.
func NewAlert(ev Event, now time.Time) (Alert, bool) {
	if !ev.AlertWorthy {
		return Alert{}, false
	}

	var title, body string
	switch ev.Kind {
	case FailedLogin:
		title = TitleFailedLogin
		body = fmt.Sprintf("user=%s ip=%s | %s", ev.User, ev.SourceIP, ev.Raw)
	case AcceptedLogin:
		if ev.Authorized {
			return Alert{}, false
		}
		title = TitleUnauthorized
		body = fmt.Sprintf("user=%s ip=%s | %s", ev.User, ev.SourceIP, ev.Raw)
	case PrivilegeEvent:
		title = TitleSudo
		body = ev.Raw
	default:
		return Alert{}, false
	}

	return Alert{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		Timestamp: now.UTC(),
	}, true
}
