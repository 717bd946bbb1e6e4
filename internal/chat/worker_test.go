package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bz888/digest/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedStreamer struct {
	chunks []llm.Chunk
	err    error
	panic  bool
}

func (s scriptedStreamer) Stream(ctx context.Context, model, prompt string, fn func(llm.Chunk) error) error {
	if s.panic {
		panic("scanner blew up")
	}
	for _, ch := range s.chunks {
		if err := fn(ch); err != nil {
			return err
		}
	}
	return s.err
}

// runThroughLoop mimics the UI goroutine: the worker queues events on a
// channel and a single consumer applies them.
func runThroughLoop(t *testing.T, streamer Streamer, prompt string) (*Session, []Event) {
	t.Helper()

	s := newTestSession()
	id, _, err := s.Submit(prompt)
	require.NoError(t, err)

	queue := make(chan Event, 64)
	go func() {
		NewWorker(streamer).Run(context.Background(), id, "discord1", prompt, func(ev Event) {
			queue <- ev
		})
		close(queue)
	}()

	var events []Event
	for ev := range queue {
		events = append(events, ev)
		s.Apply(ev)
	}
	return s, events
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestWorkerConcatenatesFragments(t *testing.T) {
	chunks := []llm.Chunk{
		{Text: "The"},
		{Text: " "},
		{Text: ""},
		{Text: "channel"},
		{Text: " was busy."},
		{Text: "", Done: true},
	}
	s, events := runThroughLoop(t, scriptedStreamer{chunks: chunks}, "summarize")

	assert.Equal(t, []EventKind{
		EventStarted, EventChunk, EventChunk, EventChunk, EventChunk, EventCompleted, EventFinished,
	}, kinds(events))

	var want strings.Builder
	for _, ch := range chunks {
		want.WriteString(ch.Text)
	}
	entries := s.Transcript().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, want.String(), entries[1].Text)
	assert.True(t, strings.HasSuffix(s.Transcript().String(), want.String()+"\n\n"))
	assert.True(t, s.SendEnabled())
}

func TestWorkerDoneChunkWithText(t *testing.T) {
	s, _ := runThroughLoop(t, scriptedStreamer{chunks: []llm.Chunk{
		{Text: "a"},
		{Text: "b", Done: true},
		{Text: "ignored"},
	}}, "p")

	assert.Equal(t, "You: p\n\nAI: ab\n\n", s.Transcript().String())
}

func TestWorkerFailureReenablesSend(t *testing.T) {
	s, events := runThroughLoop(t, scriptedStreamer{
		chunks: []llm.Chunk{{Text: "half"}},
		err:    errors.New("unexpected EOF"),
	}, "p")

	assert.Equal(t, []EventKind{EventStarted, EventChunk, EventFailed, EventFinished}, kinds(events))
	assert.Equal(t, "You: p\n\nAI: half\n\nAI: Error: unexpected EOF\n\n", s.Transcript().String())
	assert.True(t, s.SendEnabled())
	assert.Equal(t, StateIdle, s.State())
}

func TestWorkerConnectionRefused(t *testing.T) {
	s, events := runThroughLoop(t, scriptedStreamer{err: errors.New("connection refused")}, "p")

	assert.Equal(t, []EventKind{EventFailed, EventFinished}, kinds(events))
	assert.Equal(t, "You: p\n\nAI: Error: connection refused\n\n", s.Transcript().String())
	assert.True(t, s.SendEnabled())
}

func TestWorkerRecoversPanic(t *testing.T) {
	s, events := runThroughLoop(t, scriptedStreamer{panic: true}, "p")

	assert.Equal(t, []EventKind{EventFailed, EventFinished}, kinds(events))
	assert.Contains(t, s.Transcript().String(), "AI: Error: scanner blew up")
	assert.True(t, s.SendEnabled())
}

func TestWorkerAgainstOllamaServer(t *testing.T) {
	srv := newNDJSONServer(t,
		`{"response":"Hi","done":false}`,
		`{"response":" you","done":false}`,
		`{"response":"","done":true}`,
	)
	client, err := llm.NewOllamaClient(srv.URL)
	require.NoError(t, err)

	s, _ := runThroughLoop(t, client, "hello")
	assert.Equal(t, "You: hello\n\nAI: Hi you\n\n", s.Transcript().String())
	assert.True(t, s.SendEnabled())
}
