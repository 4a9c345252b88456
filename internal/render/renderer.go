package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lucasdeeiroz/runlens/internal/config"
	"github.com/lucasdeeiroz/runlens/internal/source"
	"github.com/lucasdeeiroz/runlens/pkg/dialect"
)

// Renderer applies styling to raw lines
type Renderer interface {
	Render(line *source.Line) string
}

// Styles holds the lipgloss styles derived from the theme
type Styles struct {
	Running lipgloss.Style
	Pass    lipgloss.Style
	Fail    lipgloss.Style
	System  lipgloss.Style
}

// NewStyles creates styles from config
func NewStyles(cfg *config.Config) *Styles {
	return &Styles{
		Running: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Statuses.Running)),
		Pass:    lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Statuses.Pass)),
		Fail:    lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Statuses.Fail)),
		System:  lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.SystemLine)),
	}
}

// Status returns the style for an execution status
func (s *Styles) Status(status dialect.Status) lipgloss.Style {
	switch status {
	case dialect.StatusPass:
		return s.Pass
	case dialect.StatusFail:
		return s.Fail
	default:
		return s.Running
	}
}

// LineRenderer colors raw lines: system diagnostics are dimmed, tabular
// status rows pick up the verdict color
type LineRenderer struct {
	classifier *dialect.Classifier
	styles     *Styles
}

// NewLineRenderer creates a renderer with config
func NewLineRenderer(classifier *dialect.Classifier, styles *Styles) *LineRenderer {
	return &LineRenderer{classifier: classifier, styles: styles}
}

// Render applies styling to a line
func (r *LineRenderer) Render(line *source.Line) string {
	content := string(line.Content)

	if r.classifier.IsSystem(content) {
		return r.styles.System.Render(content)
	}
	if _, status, ok := dialect.ParseStatusRow(content); ok {
		return r.styles.Status(status).Render(content)
	}
	return content
}
