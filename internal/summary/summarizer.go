package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bz888/digest/internal/config"
	"github.com/bz888/digest/internal/logger"
)

const (
	NoMessages    = "No messages to process"
	WarningMarker = "⚠️ Error processing messages:"
	headerLabel   = "**Daily Summary**"
)

// Generator is satisfied by llm.OllamaClient.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

type Summarizer struct {
	gen     Generator
	model   string
	prompt  string
	timeout time.Duration
	loc     *time.Location
	now     func() time.Time
	log     *logger.Logger
}

type Option func(*Summarizer)

// WithPrompt replaces the lead-in placed before the message context.
func WithPrompt(prompt string) Option {
	return func(s *Summarizer) {
		if prompt != "" {
			s.prompt = prompt
		}
	}
}

// WithTimeout bounds the generation request. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(s *Summarizer) {
		s.timeout = d
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *Summarizer) {
		s.loc = loc
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Summarizer) {
		s.now = now
	}
}

func New(gen Generator, model string, opts ...Option) *Summarizer {
	s := &Summarizer{
		gen:    gen,
		model:  model,
		prompt: config.DefaultPrompt,
		loc:    time.Local,
		now:    time.Now,
		log:    logger.NewLogger("summary"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prompt returns the full text sent to the model for messages.
func (s *Summarizer) Prompt(messages []Message) string {
	return s.prompt + "\n\n" + BuildContext(messages, s.loc)
}

// Summarize never fails: generation errors come back as a warning line.
func (s *Summarizer) Summarize(ctx context.Context, messages []Message) (result string) {
	if len(messages) == 0 {
		return NoMessages
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("generator panicked: ", r)
			result = fmt.Sprintf("%s %v", WarningMarker, r)
		}
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.log.Info("summarizing ", len(messages), " messages with ", s.model)
	response, err := s.gen.Generate(ctx, s.model, s.Prompt(messages))
	if err != nil {
		s.log.Error("generation failed: ", err)
		return fmt.Sprintf("%s %s", WarningMarker, err)
	}

	return fmt.Sprintf("%s - %s\nProcessed %d messages\n\n%s",
		headerLabel,
		s.now().In(s.loc).Format("2006-01-02 15:04:05"),
		len(messages),
		strings.TrimSpace(response),
	)
}
