package ui

import (
	"github.com/lucasdeeiroz/runlens/internal/render"
	"github.com/lucasdeeiroz/runlens/internal/source"
)

// logRows adapts a test's log lines to the viewport, highlighting structured
// payloads and coloring classified lines
type logRows struct {
	lines       []string
	renderer    render.Renderer
	highlighter *render.PayloadHighlighter
}

// RowCount implements view.RowProvider
func (l *logRows) RowCount() int {
	return len(l.lines)
}

// Row implements view.RowProvider
func (l *logRows) Row(index int) string {
	if index < 0 || index >= len(l.lines) {
		return ""
	}
	line := l.lines[index]
	if highlighted := l.highlighter.Highlight(line); highlighted != line {
		return highlighted
	}
	return l.renderer.Render(&source.Line{Content: []byte(line), OriginalIndex: index})
}

// rawRows adapts the filtered raw source to the viewport
type rawRows struct {
	filtered *source.FilteredProvider
	renderer render.Renderer
}

// RowCount implements view.RowProvider
func (r *rawRows) RowCount() int {
	return r.filtered.LineCount()
}

// Row implements view.RowProvider
func (r *rawRows) Row(index int) string {
	line, err := r.filtered.GetLine(index)
	if err != nil || line == nil {
		return ""
	}
	return r.renderer.Render(line)
}
