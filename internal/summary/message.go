package summary

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Message is one exported chat message.
type Message struct {
	Author    string  `json:"author"`
	Content   string  `json:"content"`
	Timestamp float64 `json:"timestamp"`
}

type record struct {
	Author    *string  `json:"author"`
	Content   *string  `json:"content"`
	Timestamp *float64 `json:"timestamp"`
}

// Time converts the epoch-seconds timestamp, rounded to the microsecond.
func (m Message) Time() time.Time {
	sec, frac := math.Modf(m.Timestamp)
	usec := int64(math.Round(frac * 1e6))
	return time.Unix(int64(sec), usec*int64(time.Microsecond))
}

// ParseRecords decodes one JSON object per line. Blank lines are skipped.
func ParseRecords(r io.Reader) ([]Message, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 4*1024*1024)

	var messages []Message
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		msg, err := parseRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}

	return messages, nil
}

func parseRecord(raw []byte) (Message, error) {
	var rec record
	if err := sonic.Unmarshal(raw, &rec); err != nil {
		return Message{}, fmt.Errorf("invalid record: %w", err)
	}

	var missing []string
	if rec.Author == nil {
		missing = append(missing, "author")
	}
	if rec.Content == nil {
		missing = append(missing, "content")
	}
	if rec.Timestamp == nil {
		missing = append(missing, "timestamp")
	}
	if len(missing) > 0 {
		return Message{}, fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}

	return Message{
		Author:    *rec.Author,
		Content:   *rec.Content,
		Timestamp: *rec.Timestamp,
	}, nil
}

// BuildContext renders messages as "[timestamp] author: content" lines in
// the given order.
func BuildContext(messages []Message, loc *time.Location) string {
	lines := make([]string, len(messages))
	for i, msg := range messages {
		lines[i] = fmt.Sprintf("[%s] %s: %s", isoTimestamp(msg.Time(), loc), msg.Author, msg.Content)
	}
	return strings.Join(lines, "\n")
}

// isoTimestamp omits the fraction when it is zero and otherwise prints
// microseconds.
func isoTimestamp(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	s := t.Format("2006-01-02T15:04:05")
	if usec := t.Nanosecond() / 1000; usec != 0 {
		s += fmt.Sprintf(".%06d", usec)
	}
	return s
}
