package view

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sliceRows []string

func (s sliceRows) RowCount() int    { return len(s) }
func (s sliceRows) Row(i int) string { return s[i] }

func rows(n int) sliceRows {
	out := make(sliceRows, n)
	for i := range out {
		out[i] = fmt.Sprintf("row %d", i)
	}
	return out
}

func TestViewportRenderPadsShortContent(t *testing.T) {
	v := NewViewport(80, 4)
	v.SetProvider(rows(2))

	lines := strings.Split(v.Render(), "\n")
	assert.Equal(t, []string{"row 0", "row 1", "~", "~"}, lines)
}

func TestViewportScrollClamps(t *testing.T) {
	v := NewViewport(80, 3)
	v.SetProvider(rows(10))

	v.ScrollDown(100)
	assert.Equal(t, 7, v.Offset())

	v.ScrollUp(100)
	assert.Equal(t, 0, v.Offset())
}

func TestViewportPaging(t *testing.T) {
	v := NewViewport(80, 5)
	v.SetProvider(rows(20))

	v.PageDown()
	assert.Equal(t, 4, v.Offset())
	v.PageUp()
	assert.Equal(t, 0, v.Offset())

	v.GotoBottom()
	assert.Equal(t, 15, v.Offset())
	v.GotoTop()
	assert.Equal(t, 0, v.Offset())
}

func TestViewportEnsureVisible(t *testing.T) {
	v := NewViewport(80, 5)
	v.SetProvider(rows(20))

	v.EnsureVisible(10)
	assert.Equal(t, 6, v.Offset(), "scrolls just enough to show the row at the bottom")

	v.EnsureVisible(7)
	assert.Equal(t, 6, v.Offset(), "already visible rows do not move the window")

	v.EnsureVisible(2)
	assert.Equal(t, 2, v.Offset(), "rows above the window become the top row")
}

func TestViewportPercentScrolled(t *testing.T) {
	v := NewViewport(80, 5)
	v.SetProvider(rows(3))
	assert.Equal(t, float64(100), v.PercentScrolled(), "fully visible content counts as 100%")

	v.SetProvider(rows(15))
	v.GotoTop()
	assert.Equal(t, float64(0), v.PercentScrolled())
	v.GotoBottom()
	assert.Equal(t, float64(100), v.PercentScrolled())
}

func TestViewportWithoutProvider(t *testing.T) {
	v := NewViewport(80, 2)
	assert.Equal(t, "~\n~", v.Render())
	assert.Equal(t, float64(0), v.PercentScrolled())
	v.ScrollDown(5)
	assert.Equal(t, 0, v.Offset())
}
