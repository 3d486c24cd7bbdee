package classifier

import (
	"regexp"
	"strings"

	"github.com/crimson-sun/authwatch/internal/model"
)

var (
	failedLogin   = regexp.MustCompile(`Failed password for (?:invalid user )?(\S+) from (\S+) port`)
	acceptedLogin = regexp.MustCompile(`Accepted password for (\S+) from (\S+) port`)
	privilege     = regexp.MustCompile(`\bsudo\b|session opened for user root|COMMAND=`)
)

// privilegeAlertMarkers narrow a privilege candidate down to an alert.
// A bare mention of "sudo" stays informational.
var privilegeAlertMarkers = []string{
	"session opened for user root",
	"COMMAND=",
	"authentication failure",
	"sudo:",
}

// rule tries to classify a line. ok is false when the rule does not apply.
type rule struct {
	name  string
	apply func(line string, wl model.Whitelist) (model.Event, bool)
}

// Classifier applies the ordered rule table to single log lines.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	whitelist model.Whitelist
	rules     []rule
}

// New creates a Classifier that consults wl for accepted logins.
func New(wl model.Whitelist) *Classifier {
	return &Classifier{
		whitelist: wl,
		rules: []rule{
			{name: "failed_login", apply: classifyFailed},
			{name: "accepted_login", apply: classifyAccepted},
			{name: "privilege", apply: classifyPrivilege},
		},
	}
}

// Classify returns the event for line. The first matching rule wins;
// every rule sees the original line. Lines matching nothing yield NoMatch.
func (c *Classifier) Classify(line string) model.Event {
	for _, r := range c.rules {
		if ev, ok := r.apply(line, c.whitelist); ok {
			return ev
		}
	}
	return model.Event{Kind: model.NoMatch, Raw: line}
}

// Rules returns the rule names in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.name
	}
	return names
}

// Whitelist returns the whitelist the classifier was built with.
func (c *Classifier) Whitelist() model.Whitelist {
	return c.whitelist
}

// Classify is a convenience for one-off classification against wl.
func Classify(line string, wl model.Whitelist) model.Event {
	return New(wl).Classify(line)
}

func classifyFailed(line string, _ model.Whitelist) (model.Event, bool) {
	user, ip, ok := extract(failedLogin, line)
	if !ok {
		return model.Event{}, false
	}
	return model.Event{
		Kind:        model.FailedLogin,
		User:        user,
		SourceIP:    ip,
		Raw:         line,
		AlertWorthy: true,
	}, true
}

func classifyAccepted(line string, wl model.Whitelist) (model.Event, bool) {
	user, ip, ok := extract(acceptedLogin, line)
	if !ok {
		return model.Event{}, false
	}
	authorized := wl.Empty() || wl.Contains(user)
	return model.Event{
		Kind:        model.AcceptedLogin,
		User:        user,
		SourceIP:    ip,
		Raw:         line,
		Authorized:  authorized,
		AlertWorthy: !authorized,
	}, true
}

func classifyPrivilege(line string, _ model.Whitelist) (model.Event, bool) {
	if !privilege.MatchString(line) {
		return model.Event{}, false
	}
	worthy := false
	for _, m := range privilegeAlertMarkers {
		if strings.Contains(line, m) {
			worthy = true
			break
		}
	}
	return model.Event{
		Kind:        model.PrivilegeEvent,
		Raw:         line,
		AlertWorthy: worthy,
	}, true
}

// extract returns the user and source IP capture groups of re.
func extract(re *regexp.Regexp, line string) (user, ip string, ok bool) {
	m := re.FindStringSubmatch(line)
	if len(m) != 3 || m[1] == "" || m[2] == "" {
		return "", "", false
	}
	return m[1], m[2], true
}
