package classifier

import (
	"reflect"
	"testing"

	"github.com/crimson-sun/authwatch/internal/model"
)

func TestClassifyScenarios(t *testing.T) {
	alice := model.NewWhitelist("alice")

	tests := []struct {
		name      string
		line      string
		wl        model.Whitelist
		wantKind  model.Kind
		wantUser  string
		wantIP    string
		wantAuth  bool
		wantAlert bool
	}{
		{
			name:      "failed login invalid user",
			line:      "Failed password for invalid user admin from 10.0.0.5 port 22",
			wantKind:  model.FailedLogin,
			wantUser:  "admin",
			wantIP:    "10.0.0.5",
			wantAlert: true,
		},
		{
			name:      "failed login known user with journal prefix",
			line:      "Mar 01 08:30:00 host sshd[1234]: Failed password for root from 192.0.2.7 port 50122 ssh2",
			wantKind:  model.FailedLogin,
			wantUser:  "root",
			wantIP:    "192.0.2.7",
			wantAlert: true,
		},
		{
			name:      "failed login whitelisted user still alerts",
			line:      "Failed password for alice from 10.0.0.5 port 22",
			wl:        alice,
			wantKind:  model.FailedLogin,
			wantUser:  "alice",
			wantIP:    "10.0.0.5",
			wantAlert: true,
		},
		{
			name:      "accepted non-whitelisted",
			line:      "Accepted password for bob from 203.0.113.9 port 22",
			wl:        alice,
			wantKind:  model.AcceptedLogin,
			wantUser:  "bob",
			wantIP:    "203.0.113.9",
			wantAlert: true,
		},
		{
			name:     "accepted whitelisted",
			line:     "Accepted password for alice from 203.0.113.9 port 22",
			wl:       alice,
			wantKind: model.AcceptedLogin,
			wantUser: "alice",
			wantIP:   "203.0.113.9",
			wantAuth: true,
		},
		{
			name:     "accepted with whitelist disabled",
			line:     "Accepted password for bob from 203.0.113.9 port 22",
			wantKind: model.AcceptedLogin,
			wantUser: "bob",
			wantIP:   "203.0.113.9",
			wantAuth: true,
		},
		{
			name:      "accepted case differs from whitelist",
			line:      "Accepted password for Alice from 203.0.113.9 port 22",
			wl:        alice,
			wantKind:  model.AcceptedLogin,
			wantUser:  "Alice",
			wantIP:    "203.0.113.9",
			wantAlert: true,
		},
		{
			name:      "sudo auth failure",
			line:      "sudo: pam_unix(sudo:auth): authentication failure; logname=bob uid=1000",
			wantKind:  model.PrivilegeEvent,
			wantAlert: true,
		},
		{
			name:      "sudo command",
			line:      "host sudo[99]:      bob : TTY=pts/0 ; PWD=/home/bob ; USER=root ; COMMAND=/bin/ls",
			wantKind:  model.PrivilegeEvent,
			wantAlert: true,
		},
		{
			name:      "root session",
			line:      "pam_unix(su:session): session opened for user root(uid=0) by bob(uid=1000)",
			wantKind:  model.PrivilegeEvent,
			wantAlert: true,
		},
		{
			name:     "benign sudo mention",
			line:     "apt: installing package sudo version 1.9",
			wantKind: model.PrivilegeEvent,
		},
		{
			name:     "sudoers is not sudo",
			line:     "editing /etc/sudoers.d/local",
			wantKind: model.NoMatch,
		},
		{
			name:     "unrelated",
			line:     "systemd[1]: Started Daily apt upgrade.",
			wantKind: model.NoMatch,
		},
		{
			name:     "missing port suffix",
			line:     "Failed password for admin from 10.0.0.5",
			wantKind: model.NoMatch,
		},
		{
			name:     "empty line",
			line:     "",
			wantKind: model.NoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Classify(tt.line, tt.wl)
			if ev.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v", ev.Kind, tt.wantKind)
			}
			if ev.User != tt.wantUser {
				t.Errorf("User = %q, want %q", ev.User, tt.wantUser)
			}
			if ev.SourceIP != tt.wantIP {
				t.Errorf("SourceIP = %q, want %q", ev.SourceIP, tt.wantIP)
			}
			if ev.Authorized != tt.wantAuth {
				t.Errorf("Authorized = %v, want %v", ev.Authorized, tt.wantAuth)
			}
			if ev.AlertWorthy != tt.wantAlert {
				t.Errorf("AlertWorthy = %v, want %v", ev.AlertWorthy, tt.wantAlert)
			}
			if ev.Raw != tt.line {
				t.Errorf("Raw = %q, want original line", ev.Raw)
			}
		})
	}
}

func TestFailedLoginWinsOverSudo(t *testing.T) {
	line := "sudo: Failed password for invalid user admin from 10.0.0.5 port 22 COMMAND=/bin/sh"
	ev := Classify(line, model.Whitelist{})
	if ev.Kind != model.FailedLogin {
		t.Fatalf("Kind = %v, want FailedLogin", ev.Kind)
	}
	if ev.User != "admin" || ev.SourceIP != "10.0.0.5" {
		t.Fatalf("got user=%q ip=%q", ev.User, ev.SourceIP)
	}
}

func TestAcceptedWinsOverSudo(t *testing.T) {
	line := "Accepted password for alice from 10.0.0.1 port 22 then sudo: COMMAND=/bin/id"
	ev := Classify(line, model.NewWhitelist("alice"))
	if ev.Kind != model.AcceptedLogin || !ev.Authorized || ev.AlertWorthy {
		t.Fatalf("got %+v, want authorized AcceptedLogin", ev)
	}
}

func TestRulesOrder(t *testing.T) {
	got := New(model.Whitelist{}).Rules()
	want := []string{"failed_login", "accepted_login", "privilege"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rules() = %v, want %v", got, want)
	}
}

func TestClassifierKeepsWhitelist(t *testing.T) {
	wl := model.NewWhitelist("alice", "bob")
	c := New(wl)
	if c.Whitelist().Len() != 2 {
		t.Fatalf("Whitelist().Len() = %d, want 2", c.Whitelist().Len())
	}
}
