package view

import (
	"strings"
)

// RowProvider supplies pre-rendered display rows.
// The viewport knows nothing about trees, dialects or files; it only knows
// how to show a window of rows.
type RowProvider interface {
	// RowCount returns the total number of rows
	RowCount() int

	// Row returns the rendered row at index (0-based)
	Row(index int) string
}

// Viewport manages the visible portion of a row list
type Viewport struct {
	provider RowProvider

	// Dimensions
	width  int
	height int

	// Scroll position
	scrollOffset int
}

// NewViewport creates a new viewport
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:  width,
		height: height,
	}
}

// SetProvider sets the row provider
func (v *Viewport) SetProvider(provider RowProvider) {
	v.provider = provider
	v.clampScroll()
}

// SetSize updates viewport dimensions
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.clampScroll()
}

// Height returns the viewport height in rows
func (v *Viewport) Height() int {
	return v.height
}

// ScrollDown scrolls down by n rows
func (v *Viewport) ScrollDown(n int) {
	v.scrollOffset += n
	v.clampScroll()
}

// ScrollUp scrolls up by n rows
func (v *Viewport) ScrollUp(n int) {
	v.scrollOffset -= n
	v.clampScroll()
}

// PageDown scrolls down by one page
func (v *Viewport) PageDown() {
	v.ScrollDown(v.height - 1)
}

// PageUp scrolls up by one page
func (v *Viewport) PageUp() {
	v.ScrollUp(v.height - 1)
}

// GotoTop scrolls to the beginning
func (v *Viewport) GotoTop() {
	v.scrollOffset = 0
}

// GotoBottom scrolls to the end
func (v *Viewport) GotoBottom() {
	if v.provider == nil {
		return
	}
	v.scrollOffset = v.provider.RowCount() - v.height
	v.clampScroll()
}

// EnsureVisible scrolls the minimum amount needed to bring a row into view
func (v *Viewport) EnsureVisible(row int) {
	if row < v.scrollOffset {
		v.scrollOffset = row
	}
	if row >= v.scrollOffset+v.height {
		v.scrollOffset = row - v.height + 1
	}
	v.clampScroll()
}

// Offset returns the current top row index
func (v *Viewport) Offset() int {
	return v.scrollOffset
}

// clampScroll ensures the scroll offset is within valid bounds
func (v *Viewport) clampScroll() {
	if v.provider == nil {
		v.scrollOffset = 0
		return
	}

	maxScroll := v.provider.RowCount() - v.height
	if maxScroll < 0 {
		maxScroll = 0
	}

	if v.scrollOffset > maxScroll {
		v.scrollOffset = maxScroll
	}
	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
}

// Render returns the visible rows as a single string, padded with "~" past
// the end of content
func (v *Viewport) Render() string {
	var builder strings.Builder

	count := 0
	if v.provider != nil {
		count = v.provider.RowCount()
	}

	for i := 0; i < v.height; i++ {
		if i > 0 {
			builder.WriteString("\n")
		}
		row := v.scrollOffset + i
		if row < count {
			builder.WriteString(v.provider.Row(row))
		} else {
			builder.WriteString("~")
		}
	}

	return builder.String()
}

// PercentScrolled returns how far through the content we are
func (v *Viewport) PercentScrolled() float64 {
	if v.provider == nil || v.provider.RowCount() == 0 {
		return 0
	}

	total := v.provider.RowCount()
	if total <= v.height {
		return 100
	}

	return float64(v.scrollOffset) / float64(total-v.height) * 100
}
