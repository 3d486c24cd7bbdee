package authwatch

import "time"

// Kinds reported in Event.Kind.
const (
	KindNoMatch        = "no_match"
	KindFailedLogin    = "failed_login"
	KindAcceptedLogin  = "accepted_login"
	KindPrivilegeEvent = "privilege_event"
)

// Event is the classification of one log line.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Event struct {
	Kind        string    `json:"kind"`                 // one of the Kind* constants
	User        string    `json:"user,omitempty"`       // login kinds only
	SourceIP    string    `json:"source_ip,omitempty"`  // login kinds only
	Authorized  bool      `json:"authorized,omitempty"` // accepted logins only
	AlertWorthy bool      `json:"alert_worthy"`
	Timestamp   time.Time `json:"timestamp"`
	Raw         string    `json:"raw"`
	Alert       *Alert    `json:"alert,omitempty"` // set when AlertWorthy
}

// Alert is the notification an alert-worthy Event produces.
type Alert struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"` // UTC
}
