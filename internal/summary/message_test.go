package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecords(t *testing.T) {
	input := `{"author":"ana","content":"standup moved to 10","timestamp":1700000000}

{"content":"ok 👍","author":"bo","timestamp":1700000060.25}
`
	got, err := ParseRecords(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []Message{
		{Author: "ana", Content: "standup moved to 10", Timestamp: 1700000000},
		{Author: "bo", Content: "ok 👍", Timestamp: 1700000060.25},
	}, got)
}

func TestParseRecordsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "not json",
			input: "{\"author\":\"a\",\"content\":\"b\",\"timestamp\":1}\nhello there",
			want:  "line 2",
		},
		{
			name:  "missing keys",
			input: `{"author":"a"}`,
			want:  "missing content, timestamp",
		},
		{
			name:  "string timestamp",
			input: `{"author":"a","content":"b","timestamp":"yesterday"}`,
			want:  "line 1: invalid record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecords(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildContext(t *testing.T) {
	messages := []Message{
		{Author: "ana", Content: "first", Timestamp: 1700000000},
		{Author: "bo", Content: "second", Timestamp: 1700000000.5},
		{Author: "cy", Content: "third", Timestamp: 1699999999},
	}

	want := "[2023-11-14T22:13:20] ana: first\n" +
		"[2023-11-14T22:13:20.500000] bo: second\n" +
		"[2023-11-14T22:13:19] cy: third"

	got := BuildContext(messages, time.UTC)
	assert.Equal(t, want, got)
	assert.Equal(t, got, BuildContext(messages, time.UTC), "context must be deterministic")
}

func TestBuildContextLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	got := BuildContext([]Message{{Author: "ana", Content: "hi", Timestamp: 1700000000}}, loc)
	assert.Equal(t, "[2023-11-15T00:13:20] ana: hi", got)
}

func TestBuildContextEmpty(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil, time.UTC))
}

func TestMessageTimeRounding(t *testing.T) {
	m := Message{Timestamp: 1700000000.9999999}
	assert.Equal(t, time.Unix(1700000001, 0), m.Time())
}
