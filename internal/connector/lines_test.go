package connector

import (
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"testing/iotest"
)

type readLine struct {
	text      string
	truncated bool
}

func collect(t *testing.T, r io.Reader, max int) []readLine {
	t.Helper()
	var got []readLine
	if err := ReadLines(r, max, func(line string, truncated bool) bool {
		got = append(got, readLine{line, truncated})
		return true
	}); err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	return got
}

func TestReadLinesSplitsAndStripsCRLF(t *testing.T) {
	got := collect(t, strings.NewReader("a\r\nb\n\nc"), 0)
	want := []readLine{{"a", false}, {"b", false}, {"", false}, {"c", false}}
	if !slices.Equal(got, want) {
		t.Errorf("ReadLines() = %v, want %v", got, want)
	}
}

func TestReadLinesTruncatesAndContinues(t *testing.T) {
	// Larger than the internal buffer so the long line arrives in pieces.
	long := strings.Repeat("z", 200_000)
	got := collect(t, strings.NewReader("short\n"+long+"\nnext\n"), 10)
	want := []readLine{{"short", false}, {"zzzzzzzzzz", true}, {"next", false}}
	if !slices.Equal(got, want) {
		t.Errorf("ReadLines() = %v, want %v", got, want)
	}
}

func TestReadLinesHandlesShortReads(t *testing.T) {
	got := collect(t, iotest.OneByteReader(strings.NewReader("one\ntwo\n")), 0)
	want := []readLine{{"one", false}, {"two", false}}
	if !slices.Equal(got, want) {
		t.Errorf("ReadLines() = %v, want %v", got, want)
	}
}

func TestReadLinesStopsWhenEmitDeclines(t *testing.T) {
	var n int
	err := ReadLines(strings.NewReader("1\n2\n3\n"), 0, func(string, bool) bool {
		n++
		return n < 2
	})
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if n != 2 {
		t.Errorf("emit called %d times, want 2", n)
	}
}

func TestReadLinesReturnsReadError(t *testing.T) {
	boom := errors.New("boom")
	err := ReadLines(iotest.ErrReader(boom), 0, func(string, bool) bool { return true })
	if !errors.Is(err, boom) {
		t.Errorf("ReadLines() error = %v, want %v", err, boom)
	}
}
