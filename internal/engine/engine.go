package engine

import (
	"fmt"
	"strconv"

	"github.com/crimson-sun/authwatch/internal/engine/classifier"
	"github.com/crimson-sun/authwatch/internal/model"
	"github.com/crimson-sun/authwatch/internal/telemetry"
)

// Engine turns raw log lines into classified events.
type Engine struct {
	classifier *classifier.Classifier
}

// New creates an Engine around the given classifier.
func New(cls *classifier.Classifier) *Engine {
	return &Engine{classifier: cls}
}

// Process classifies a single raw log. Exactly one event is returned per line.
// If classification fails the event is NoMatch and the error describes why.
func (e *Engine) Process(raw model.RawLog) (ev model.Event, err error) {
	telemetry.LinesProcessed.WithLabelValues(raw.Source).Inc()

	defer func() {
		if r := recover(); r != nil {
			telemetry.ClassificationErrors.Inc()
			ev = model.Event{Kind: model.NoMatch, Raw: raw.Raw, Timestamp: raw.Timestamp}
			err = fmt.Errorf("engine: classify: %v", r)
		}
		telemetry.EventsClassified.WithLabelValues(ev.Kind.String(), strconv.FormatBool(ev.AlertWorthy)).Inc()
	}()

	ev = e.classifier.Classify(raw.Raw)
	ev.Timestamp = raw.Timestamp
	return ev, nil
}

// ProcessBatch classifies a slice of raw logs. A failing line becomes NoMatch
// and does not abort the batch; the first error is returned alongside.
func (e *Engine) ProcessBatch(raws []model.RawLog) ([]model.Event, error) {
	events := make([]model.Event, 0, len(raws))
	var firstErr error
	for _, raw := range raws {
		ev, err := e.Process(raw)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		events = append(events, ev)
	}
	return events, firstErr
}
