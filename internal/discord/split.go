package discord

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is Discord's per-message character limit.
const MaxMessageLength = 2000

// room kept free in every part for the part header and fence repair
const partReserve = 64

const maxFenceLang = 20

// Split breaks text into parts of at most limit characters. A code block cut
// by a split is closed at the end of the part and reopened with the same
// language in the next one. Multi-part output gets "**Part i/n**" headers.
func Split(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	budget := limit - partReserve
	if budget < 2 {
		budget = limit
	}

	var (
		parts  []string
		cur    strings.Builder
		curLen int
		inCode bool
		lang   string
	)

	write := func(s string) {
		cur.WriteString(s)
		curLen += utf8.RuneCountInString(s)
	}
	flush := func() {
		body := cur.String()
		cur.Reset()
		curLen = 0
		if strings.TrimSpace(body) == "" {
			return
		}
		if inCode {
			body += "```"
		}
		parts = append(parts, strings.TrimRight(body, "\n"))
		if inCode {
			write("```" + lang + "\n")
		}
	}

	for _, line := range strings.Split(text, "\n") {
		for _, piece := range wrap(line, budget/2) {
			if curLen+utf8.RuneCountInString(piece)+1 > budget {
				flush()
			}
			write(piece + "\n")
		}

		if strings.HasPrefix(line, "```") {
			if inCode {
				inCode = false
			} else {
				inCode = true
				lang = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				if utf8.RuneCountInString(lang) > maxFenceLang {
					lang = ""
				}
			}
		}
	}
	// the text itself may leave a block open; close it like any other split
	flush()

	if len(parts) > 1 {
		for i := range parts {
			parts[i] = fmt.Sprintf("**Part %d/%d**\n%s", i+1, len(parts), parts[i])
		}
	}
	return parts
}

// wrap cuts a line into pieces of at most width runes.
func wrap(line string, width int) []string {
	if width <= 0 || utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	var pieces []string
	runes := []rune(line)
	for len(runes) > width {
		pieces = append(pieces, string(runes[:width]))
		runes = runes[width:]
	}
	return append(pieces, string(runes))
}
