package authwatch

import "time"

// Log is a structured input line for ClassifyLog.
type Log struct {
	Text      string    // the journal line
	Timestamp time.Time // zero means now
	Source    string    // optional origin, e.g. "journal"
}
