package summary

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
)

const noInput = "No input data received"

var errorColor = color.New(color.FgRed, color.Bold)

// Deliverer forwards a finished summary somewhere besides stdout.
type Deliverer interface {
	Deliver(ctx context.Context, text string) error
}

// Run reads records from in, writes the summary to out and returns the
// process exit code. deliver may be nil.
func Run(ctx context.Context, in io.Reader, out io.Writer, s *Summarizer, deliver Deliverer) int {
	data, err := io.ReadAll(in)
	if err != nil {
		errorColor.Fprintf(out, "Error processing input: %s\n", err)
		return 1
	}
	if len(bytes.TrimSpace(data)) == 0 {
		errorColor.Fprintln(out, noInput)
		return 1
	}

	messages, err := ParseRecords(bytes.NewReader(data))
	if err != nil {
		s.log.Error("failed to parse input: ", err)
		errorColor.Fprintf(out, "Error processing input: %s\n", err)
		return 1
	}

	result := s.Summarize(ctx, messages)
	fmt.Fprintln(out, result)

	if deliver != nil {
		if err := deliver.Deliver(ctx, result); err != nil {
			s.log.Error("failed to deliver summary: ", err)
		} else {
			s.log.Info("summary delivered")
		}
	}
	return 0
}
