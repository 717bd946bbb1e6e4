package chat

import "fmt"

type EventKind int

const (
	// EventStarted is sent once the server has answered.
	EventStarted EventKind = iota
	EventChunk
	// EventCompleted follows the chunk carrying done=true.
	EventCompleted
	EventFailed
	// EventFinished is always the last event of a request.
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventChunk:
		return "chunk"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventFinished:
		return "finished"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is sent from a worker to the UI goroutine.
type Event struct {
	Kind      EventKind
	RequestID string
	Text      string
	Err       error
}
