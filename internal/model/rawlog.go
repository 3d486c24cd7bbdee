package model

import "time"

// RawLog is the intermediate type produced by connectors and consumed by the engine.
type RawLog struct {
	Timestamp time.Time
	Source    string // connector name (e.g. "journal", "reader")
	Raw       string // original log line, newline stripped
}
