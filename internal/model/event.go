package model

import "time"

// Kind identifies which classification rule produced an Event.
type Kind int

const (
	NoMatch        Kind = iota // line matched no rule
	FailedLogin                // failed SSH password attempt
	AcceptedLogin              // successful SSH password login
	PrivilegeEvent             // sudo / root session / command execution
)

func (k Kind) String() string {
	switch k {
	case FailedLogin:
		return "failed_login"
	case AcceptedLogin:
		return "accepted_login"
	case PrivilegeEvent:
		return "privilege_event"
	default:
		return "no_match"
	}
}

// Event is the classification of exactly one log line.
// User and SourceIP are set for login kinds only. Authorized is meaningful
// for AcceptedLogin only.
type Event struct {
	Kind        Kind
	User        string
	SourceIP    string
	Raw         string
	Authorized  bool
	AlertWorthy bool
	Timestamp   time.Time
}
