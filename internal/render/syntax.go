package render

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// PayloadHighlighter highlights structured payloads that runners often dump
// into their output (JSON bodies, XML responses). Anything else is returned
// untouched.
type PayloadHighlighter struct {
	syntaxTheme string
}

// NewPayloadHighlighter creates a highlighter with the default theme
func NewPayloadHighlighter() *PayloadHighlighter {
	return &PayloadHighlighter{syntaxTheme: "monokai"}
}

// Highlight applies syntax highlighting to a log line when it looks like a
// structured payload
func (h *PayloadHighlighter) Highlight(line string) string {
	lexer := payloadLexer(line)
	if lexer == "" {
		return line
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, line, lexer, "terminal16m", h.syntaxTheme); err != nil {
		return line
	}

	// Remove any newlines that quick.Highlight adds
	highlighted := buf.String()
	highlighted = strings.ReplaceAll(highlighted, "\n", "")
	highlighted = strings.ReplaceAll(highlighted, "\r", "")
	return highlighted
}

// payloadLexer picks a lexer name for a line, or "" for plain text
func payloadLexer(line string) string {
	s := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		return "json"
	case strings.HasPrefix(s, "[{") && strings.HasSuffix(s, "}]"):
		return "json"
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return "xml"
	}
	return ""
}
