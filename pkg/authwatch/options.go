package authwatch

import (
	"fmt"
	"strings"
	"unicode"
)

type options struct {
	whitelist []string
}

// Option configures a Watcher.
type Option func(*options)

// WithWhitelist sets the users whose accepted logins are authorized.
// Names are matched exactly and case-sensitively. With no whitelist every
// accepted login is trusted. Repeated calls accumulate.
func WithWhitelist(users ...string) Option {
	return func(o *options) {
		o.whitelist = append(o.whitelist, users...)
	}
}

// WithWhitelistCSV is WithWhitelist for a comma-separated list such as the
// MON_WHITELIST environment variable.
func WithWhitelistCSV(csv string) Option {
	return func(o *options) {
		if strings.TrimSpace(csv) == "" {
			return
		}
		o.whitelist = append(o.whitelist, strings.Split(csv, ",")...)
	}
}

// validate rejects names that can never match a journal username.
func (o options) validate() error {
	for _, u := range o.whitelist {
		u = strings.TrimSpace(u)
		if strings.IndexFunc(u, unicode.IsSpace) >= 0 || strings.Contains(u, ",") {
			return fmt.Errorf("authwatch: whitelist entry %q contains whitespace or a comma", u)
		}
	}
	return nil
}
