package model

import "strings"

// Whitelist is the immutable set of usernames allowed to log in.
// The zero value is an empty whitelist, which disables the access check.
type Whitelist struct {
	users map[string]struct{}
}

// NewWhitelist builds a Whitelist from names. Surrounding whitespace is
// trimmed and blank entries are dropped; matching is otherwise exact.
func NewWhitelist(names ...string) Whitelist {
	users := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		users[n] = struct{}{}
	}
	return Whitelist{users: users}
}

// ParseWhitelist splits a comma-separated list such as "alice, bob".
func ParseWhitelist(s string) Whitelist {
	if strings.TrimSpace(s) == "" {
		return Whitelist{}
	}
	return NewWhitelist(strings.Split(s, ",")...)
}

// Empty reports whether no usernames are configured (whitelist-disabled mode).
func (w Whitelist) Empty() bool { return len(w.users) == 0 }

// Contains reports whether user is whitelisted. Case-sensitive.
func (w Whitelist) Contains(user string) bool {
	_, ok := w.users[user]
	return ok
}

// Len returns the number of whitelisted users.
func (w Whitelist) Len() int { return len(w.users) }
