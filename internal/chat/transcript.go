package chat

import "strings"

type Speaker string

const (
	SpeakerUser Speaker = "You"
	SpeakerAI   Speaker = "AI"
)

const separator = "\n\n"

type Entry struct {
	Speaker Speaker
	Text    string
}

func (e Entry) prefix() string {
	return string(e.Speaker) + ": "
}

// Transcript is append-only. The last entry may be open while a response
// streams in.
type Transcript struct {
	entries []Entry
	open    bool
}

func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Transcript) Len() int {
	return len(t.entries)
}

// add appends a closed entry and returns the rendered delta.
func (t *Transcript) add(speaker Speaker, text string) string {
	delta := t.close()
	e := Entry{Speaker: speaker, Text: text}
	t.entries = append(t.entries, e)
	return delta + e.prefix() + text + separator
}

// begin opens an entry that later appends extend.
func (t *Transcript) begin(speaker Speaker) string {
	delta := t.close()
	e := Entry{Speaker: speaker}
	t.entries = append(t.entries, e)
	t.open = true
	return delta + e.prefix()
}

func (t *Transcript) appendText(text string) string {
	if !t.open || text == "" {
		return ""
	}
	t.entries[len(t.entries)-1].Text += text
	return text
}

func (t *Transcript) close() string {
	if !t.open {
		return ""
	}
	t.open = false
	return separator
}

func (t *Transcript) String() string {
	var sb strings.Builder
	for i, e := range t.entries {
		sb.WriteString(e.prefix())
		sb.WriteString(e.Text)
		if i < len(t.entries)-1 || !t.open {
			sb.WriteString(separator)
		}
	}
	return sb.String()
}
