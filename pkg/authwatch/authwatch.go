package authwatch

import (
	"time"

	"github.com/crimson-sun/authwatch/internal/engine"
	"github.com/crimson-sun/authwatch/internal/engine/classifier"
	"github.com/crimson-sun/authwatch/internal/model"
)

// Watcher classifies journal lines against the failed-login, accepted-login
// and privilege rules. Safe for concurrent use.
type Watcher struct {
	engine    *engine.Engine
	whitelist model.Whitelist
}

// New creates a Watcher.
func New(opts ...Option) (*Watcher, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	wl := model.NewWhitelist(o.whitelist...)
	return &Watcher{
		engine:    engine.New(classifier.New(wl)),
		whitelist: wl,
	}, nil
}

// Classify classifies a single line. Lines matching no rule yield a
// KindNoMatch event, never an error; an error means classification itself
// failed and the event degrades to KindNoMatch.
func (w *Watcher) Classify(text string) (Event, error) {
	return w.ClassifyLog(Log{Text: text})
}

// ClassifyBatch classifies lines in order. A failing line becomes
// KindNoMatch; the first error is returned alongside the full result.
func (w *Watcher) ClassifyBatch(texts []string) ([]Event, error) {
	logs := make([]Log, len(texts))
	for i, t := range texts {
		logs[i] = Log{Text: t}
	}
	return w.ClassifyLogs(logs)
}

// ClassifyLog classifies a structured log entry. Use this when you have
// timestamp and source information. For raw text, use Classify().
func (w *Watcher) ClassifyLog(log Log) (Event, error) {
	ev, err := w.engine.Process(rawLog(log, time.Now()))
	return publicEvent(ev), err
}

// ClassifyLogs classifies a batch of structured log entries.
func (w *Watcher) ClassifyLogs(logs []Log) ([]Event, error) {
	raws := make([]model.RawLog, len(logs))
	now := time.Now()
	for i, log := range logs {
		raws[i] = rawLog(log, now)
	}
	evs, err := w.engine.ProcessBatch(raws)
	events := make([]Event, len(evs))
	for i, ev := range evs {
		events[i] = publicEvent(ev)
	}
	return events, err
}

// Authorized reports whether user is on the whitelist, or whether the
// whitelist is empty (every login trusted).
func (w *Watcher) Authorized(user string) bool {
	return w.whitelist.Empty() || w.whitelist.Contains(user)
}

func rawLog(log Log, now time.Time) model.RawLog {
	ts := log.Timestamp
	if ts.IsZero() {
		ts = now
	}
	return model.RawLog{Timestamp: ts, Source: log.Source, Raw: log.Text}
}

// publicEvent converts the internal Event to the public type, attaching the
// alert it would raise.
func publicEvent(ev model.Event) Event {
	out := Event{
		Kind:        ev.Kind.String(),
		User:        ev.User,
		SourceIP:    ev.SourceIP,
		Authorized:  ev.Authorized,
		AlertWorthy: ev.AlertWorthy,
		Timestamp:   ev.Timestamp,
		Raw:         ev.Raw,
	}
	if a, ok := model.NewAlert(ev, ev.Timestamp); ok {
		out.Alert = &Alert{ID: a.ID, Title: a.Title, Body: a.Body, Timestamp: a.Timestamp}
	}
	return out
}
