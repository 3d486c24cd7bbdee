package reader

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/authwatch/internal/connector"
)

func TestStreamPreservesOrder(t *testing.T) {
	c := New(strings.NewReader("a\r\nb\nc\n"))
	ch, err := c.Stream(context.Background(), connector.ConnectorConfig{})
	require.NoError(t, err)

	var got []string
	for raw := range ch {
		assert.Equal(t, Name, raw.Source)
		got = append(got, raw.Raw)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestStreamStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := New(pr).Stream(ctx, connector.ConnectorConfig{})
	require.NoError(t, err)

	go pw.Write([]byte("one\ntwo\n"))
	require.Equal(t, "one", (<-ch).Raw)

	cancel()
	// The reader already holds "two"; with no receiver the send cannot win.
	time.Sleep(50 * time.Millisecond)
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "no line should be emitted after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestStreamSurvivesOversizedLine(t *testing.T) {
	input := strings.Repeat("x", 2_000_000) + "\nsshd[1]: Failed password for root from 1.2.3.4 port 22\n"
	ch, err := New(strings.NewReader(input)).Stream(context.Background(), connector.ConnectorConfig{})
	require.NoError(t, err)

	var got []string
	for raw := range ch {
		got = append(got, raw.Raw)
	}
	require.Len(t, got, 2)
	assert.Len(t, got[0], connector.MaxLineBytes)
	assert.Contains(t, got[1], "Failed password for root from 1.2.3.4 port 22")
}

func TestQueryKeepsLinesAfterOversizedOne(t *testing.T) {
	input := "before\n" + strings.Repeat("y", 3<<20) + "\nafter"
	logs, err := New(strings.NewReader(input)).Query(context.Background(), connector.ConnectorConfig{}, connector.QueryParams{})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "before", logs[0].Raw)
	assert.Len(t, logs[1].Raw, connector.MaxLineBytes)
	assert.Equal(t, "after", logs[2].Raw)
}

func TestQueryLimitKeepsMostRecent(t *testing.T) {
	c := New(strings.NewReader("1\n2\n3\n4\n"))
	logs, err := c.Query(context.Background(), connector.ConnectorConfig{}, connector.QueryParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "3", logs[0].Raw)
	assert.Equal(t, "4", logs[1].Raw)
}

func TestQueryInvalidUTF8Replaced(t *testing.T) {
	logs, err := New(strings.NewReader("x\xffy\n")).Query(context.Background(), connector.ConnectorConfig{}, connector.QueryParams{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "x�y", logs[0].Raw)
}

func TestRegistered(t *testing.T) {
	_, err := connector.Get(Name)
	assert.NoError(t, err)
}
