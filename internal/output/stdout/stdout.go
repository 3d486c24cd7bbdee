package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/crimson-sun/authwatch/internal/model"
	"github.com/crimson-sun/authwatch/internal/output"
)

// Output echoes alerts and informational classifications to the console.
// In text mode alerts use the audit line format; in JSON mode each record is
// one NDJSON object.
type Output struct {
	mu   sync.Mutex
	w    io.Writer
	enc  *json.Encoder
	json bool
}

type alertRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

type infoRecord struct {
	Kind     string `json:"kind"`
	User     string `json:"user,omitempty"`
	SourceIP string `json:"ip,omitempty"`
	Raw      string `json:"raw"`
	Info     string `json:"info"`
}

// NewWriter creates a console Output writing to w.
func NewWriter(w io.Writer, jsonMode bool) *Output {
	return &Output{w: w, enc: json.NewEncoder(w), json: jsonMode}
}

func (o *Output) Write(_ context.Context, alert model.Alert) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.json {
		rec := alertRecord{ID: alert.ID, Title: alert.Title, Body: alert.Body, Timestamp: alert.Timestamp}
		if err := o.enc.Encode(rec); err != nil {
			return fmt.Errorf("stdout output: %w", err)
		}
		return nil
	}
	if _, err := fmt.Fprintln(o.w, output.FormatAlert(alert)); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

// Info echoes a non-alert classification. NoMatch events are not echoed.
func (o *Output) Info(ev model.Event) error {
	msg := InfoMessage(ev)
	if msg == "" {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.json {
		rec := infoRecord{Kind: ev.Kind.String(), User: ev.User, SourceIP: ev.SourceIP, Raw: ev.Raw, Info: msg}
		if err := o.enc.Encode(rec); err != nil {
			return fmt.Errorf("stdout output: %w", err)
		}
		return nil
	}
	if _, err := fmt.Fprintln(o.w, msg); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}

// InfoMessage returns the console text for an informational event, or ""
// when the event has nothing to report.
func InfoMessage(ev model.Event) string {
	switch ev.Kind {
	case model.AcceptedLogin:
		if ev.AlertWorthy {
			return ""
		}
		if ev.Authorized && ev.User != "" {
			return fmt.Sprintf("[info] Login by %s from %s", ev.User, ev.SourceIP)
		}
	case model.PrivilegeEvent:
		if !ev.AlertWorthy {
			return "SUDO(info): " + ev.Raw
		}
	}
	return ""
}
