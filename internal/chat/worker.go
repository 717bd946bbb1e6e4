package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/bz888/digest/internal/llm"
	"github.com/bz888/digest/internal/logger"
)

// Streamer is satisfied by llm.OllamaClient.
type Streamer interface {
	Stream(ctx context.Context, model, prompt string, fn func(llm.Chunk) error) error
}

// Worker runs one streaming request. It never touches a Session; all
// results leave through the dispatch function.
type Worker struct {
	streamer Streamer
	log      *logger.Logger
}

func NewWorker(streamer Streamer) *Worker {
	return &Worker{
		streamer: streamer,
		log:      logger.NewLogger("chat worker"),
	}
}

// Run streams prompt from model and dispatches events for id in arrival
// order, ending with exactly one EventFinished. Errors and panics are turned
// into EventFailed.
func (w *Worker) Run(ctx context.Context, id, model, prompt string, dispatch func(Event)) {
	defer dispatch(Event{Kind: EventFinished, RequestID: id})
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("stream panicked: ", r)
			dispatch(Event{Kind: EventFailed, RequestID: id, Err: fmt.Errorf("%v", r)})
		}
	}()

	started := false
	completed := false
	w.log.Info("request ", id, " to ", model)

	err := w.streamer.Stream(ctx, model, prompt, func(ch llm.Chunk) error {
		if completed {
			return nil
		}
		if !started {
			started = true
			dispatch(Event{Kind: EventStarted, RequestID: id})
		}
		if ch.Text != "" {
			dispatch(Event{Kind: EventChunk, RequestID: id, Text: ch.Text})
		}
		if ch.Done {
			completed = true
			dispatch(Event{Kind: EventCompleted, RequestID: id})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			w.log.Warn("request ", id, " cancelled")
		} else {
			w.log.Error("request ", id, " failed: ", err)
		}
		dispatch(Event{Kind: EventFailed, RequestID: id, Err: err})
		return
	}
	if !completed {
		w.log.Warn("request ", id, " ended without done")
	}
}
