package connector

import (
	"bufio"
	"errors"
	"io"
)

// MaxLineBytes caps a single source line. Longer lines are truncated, not rejected.
const MaxLineBytes = 1 << 20

// ReadLines calls emit for every newline-terminated line of r, without the
// line ending. A line longer than max bytes is cut to its first max bytes
// and truncated is set; the remainder is consumed and discarded so the
// following lines are still delivered. A final line without a newline is
// emitted too. Reading stops early when emit returns false. EOF is not an error.
func ReadLines(r io.Reader, max int, emit func(line string, truncated bool) bool) error {
	if max <= 0 {
		max = MaxLineBytes
	}
	br := bufio.NewReaderSize(r, 64*1024)
	buf := make([]byte, 0, 4096)
	truncated := false
	for {
		chunk, isPrefix, err := br.ReadLine()
		if room := max - len(buf); len(chunk) > room {
			chunk = chunk[:room]
			truncated = true
		}
		buf = append(buf, chunk...)
		if err != nil {
			if len(buf) > 0 {
				emit(string(buf), truncated)
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if isPrefix {
			continue
		}
		line, cut := string(buf), truncated
		buf, truncated = buf[:0], false
		if !emit(line, cut) {
			return nil
		}
	}
}
