package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateStreaming:
		return "streaming"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrBusy is returned by Submit while a request is still in flight.
var ErrBusy = errors.New("a response is still streaming")

// Session is the view-model behind the chat window. It is not safe for
// concurrent use; every method must run on the UI goroutine.
type Session struct {
	transcript Transcript
	state      State
	active     string
	newID      func() string
}

func NewSession() *Session {
	return &Session{
		newID: func() string { return uuid.NewString() },
	}
}

func (s *Session) State() State {
	return s.state
}

// SendEnabled reports whether the send control should accept input.
func (s *Session) SendEnabled() bool {
	return s.active == ""
}

// ActiveRequest is the ID of the request in flight, or "".
func (s *Session) ActiveRequest() string {
	return s.active
}

func (s *Session) Transcript() *Transcript {
	return &s.transcript
}

// Submit records the user's prompt and reserves a request ID for the worker.
// An empty prompt returns an empty ID and no error.
func (s *Session) Submit(prompt string) (id string, delta string, err error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", "", nil
	}
	if !s.SendEnabled() {
		return "", "", ErrBusy
	}

	delta = s.transcript.add(SpeakerUser, prompt)
	s.active = s.newID()
	s.state = StateAwaitingResponse
	return s.active, delta, nil
}

// Note appends a local AI line that is not tied to a request, e.g. command
// output. It is dropped while a response is streaming.
func (s *Session) Note(text string) string {
	if !s.SendEnabled() {
		return ""
	}
	return s.transcript.add(SpeakerAI, text)
}

// Apply folds one worker event into the transcript and returns the text the
// view must append. Events for any request other than the active one are
// dropped.
func (s *Session) Apply(ev Event) string {
	if s.active == "" || ev.RequestID != s.active {
		return ""
	}

	switch ev.Kind {
	case EventStarted:
		if s.state != StateAwaitingResponse {
			return ""
		}
		s.state = StateStreaming
		return s.transcript.begin(SpeakerAI)

	case EventChunk:
		if s.state != StateStreaming {
			return ""
		}
		return s.transcript.appendText(ev.Text)

	case EventCompleted:
		if s.state != StateStreaming {
			return ""
		}
		s.state = StateIdle
		return s.transcript.close()

	case EventFailed:
		s.state = StateIdle
		msg := "unknown error"
		if ev.Err != nil {
			msg = ev.Err.Error()
		}
		return s.transcript.add(SpeakerAI, "Error: "+msg)

	case EventFinished:
		delta := s.transcript.close()
		s.state = StateIdle
		s.active = ""
		return delta
	}
	return ""
}
