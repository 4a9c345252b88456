package ui

import (
	"fmt"
	"strings"

	"github.com/lucasdeeiroz/runlens/internal/hierarchy"
	"github.com/lucasdeeiroz/runlens/internal/render"
	"github.com/lucasdeeiroz/runlens/internal/view"
	"github.com/lucasdeeiroz/runlens/pkg/dialect"
)

// treeRow is one visible row of the tree pane
type treeRow struct {
	node        hierarchy.Node
	depth       int
	hasChildren bool
}

// TreePane shows the execution tree with its own selection and collapse
// state. Collapse and selection are keyed on stable node ids, so both
// survive the wholesale tree rebuilds that happen while a run is live.
type TreePane struct {
	viewport *view.Viewport
	styles   *render.Styles

	tree      []hierarchy.Node
	rows      []treeRow
	collapsed map[string]bool

	selection  int
	selectedID string
	showIDs    bool
}

// NewTreePane creates a tree pane
func NewTreePane(styles *render.Styles, showIDs bool) *TreePane {
	p := &TreePane{
		viewport:  view.NewViewport(80, 24),
		styles:    styles,
		collapsed: make(map[string]bool),
		showIDs:   showIDs,
	}
	p.viewport.SetProvider(p)
	return p
}

// SetSize sets the pane size
func (p *TreePane) SetSize(width, height int) {
	p.viewport.SetSize(width, height)
}

// SetTree replaces the tree and recomputes the visible rows, keeping the
// previously selected node selected if it still exists
func (p *TreePane) SetTree(tree []hierarchy.Node) {
	p.tree = tree
	p.rebuildRows()
}

// Selected returns the currently selected node, or nil
func (p *TreePane) Selected() hierarchy.Node {
	if p.selection < 0 || p.selection >= len(p.rows) {
		return nil
	}
	return p.rows[p.selection].node
}

// SelectedTest returns the selected node as a test, or nil
func (p *TreePane) SelectedTest() *hierarchy.TestNode {
	test, _ := p.Selected().(*hierarchy.TestNode)
	return test
}

// MoveDown moves the selection down by n rows
func (p *TreePane) MoveDown(n int) {
	p.setSelection(p.selection + n)
}

// MoveUp moves the selection up by n rows
func (p *TreePane) MoveUp(n int) {
	p.setSelection(p.selection - n)
}

// GotoTop selects the first row
func (p *TreePane) GotoTop() {
	p.setSelection(0)
}

// GotoBottom selects the last row
func (p *TreePane) GotoBottom() {
	p.setSelection(len(p.rows) - 1)
}

// PageDown moves the selection down by one page
func (p *TreePane) PageDown() {
	p.MoveDown(p.viewport.Height() - 1)
}

// PageUp moves the selection up by one page
func (p *TreePane) PageUp() {
	p.MoveUp(p.viewport.Height() - 1)
}

// Toggle collapses or expands the selected suite
func (p *TreePane) Toggle() {
	row := p.Selected()
	if row == nil {
		return
	}
	if suite, ok := row.(*hierarchy.SuiteNode); ok && len(suite.Children) > 0 {
		p.collapsed[suite.ID] = !p.collapsed[suite.ID]
		p.rebuildRows()
	}
}

// CollapseAll collapses every suite
func (p *TreePane) CollapseAll() {
	var walk func(nodes []hierarchy.Node)
	walk = func(nodes []hierarchy.Node) {
		for _, n := range nodes {
			if suite, ok := n.(*hierarchy.SuiteNode); ok {
				p.collapsed[suite.ID] = true
				walk(suite.Children)
			}
		}
	}
	walk(p.tree)
	p.rebuildRows()
}

// ExpandAll expands every suite
func (p *TreePane) ExpandAll() {
	p.collapsed = make(map[string]bool)
	p.rebuildRows()
}

// Render returns the rendered pane content
func (p *TreePane) Render() string {
	return p.viewport.Render()
}

// setSelection clamps and applies a new selection, scrolling it into view
func (p *TreePane) setSelection(idx int) {
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.rows) {
		idx = len(p.rows) - 1
	}
	p.selection = idx
	if idx >= 0 {
		p.selectedID = p.rows[idx].node.NodeID()
		p.viewport.EnsureVisible(idx)
	} else {
		p.selectedID = ""
	}
}

// rebuildRows recomputes the visible rows from the tree and collapse state
func (p *TreePane) rebuildRows() {
	p.rows = p.rows[:0]

	var walk func(nodes []hierarchy.Node, depth int)
	walk = func(nodes []hierarchy.Node, depth int) {
		for _, n := range nodes {
			suite, isSuite := n.(*hierarchy.SuiteNode)
			p.rows = append(p.rows, treeRow{
				node:        n,
				depth:       depth,
				hasChildren: isSuite && len(suite.Children) > 0,
			})
			if isSuite && !p.collapsed[suite.ID] {
				walk(suite.Children, depth+1)
			}
		}
	}
	walk(p.tree, 0)

	// Re-find the previously selected node by id
	p.selection = -1
	for i, row := range p.rows {
		if row.node.NodeID() == p.selectedID {
			p.selection = i
			break
		}
	}
	if p.selection < 0 && len(p.rows) > 0 {
		p.selection = 0
		p.selectedID = p.rows[0].node.NodeID()
	}
	if p.selection >= 0 {
		p.viewport.EnsureVisible(p.selection)
	}
}

// RowCount implements view.RowProvider
func (p *TreePane) RowCount() int {
	return len(p.rows)
}

// Row implements view.RowProvider
func (p *TreePane) Row(index int) string {
	if index < 0 || index >= len(p.rows) {
		return ""
	}
	row := p.rows[index]

	marker := "  "
	if index == p.selection {
		marker = "> "
	}
	indent := strings.Repeat("  ", row.depth)

	var body string
	switch n := row.node.(type) {
	case *hierarchy.SuiteNode:
		arrow := "▾"
		if p.collapsed[n.ID] {
			arrow = "▸"
		}
		if !row.hasChildren {
			arrow = " "
		}
		body = fmt.Sprintf("%s %s %s", arrow, statusGlyph(p.styles, n.Status), n.Name)
		if n.Summary != "" {
			body += "  " + p.styles.System.Render(n.Summary)
		}

	case *hierarchy.TestNode:
		body = fmt.Sprintf("  %s %s", statusGlyph(p.styles, n.Status), n.Name)
		if n.Documentation != "" {
			body += "  " + p.styles.System.Render(n.Documentation)
		}

	case *hierarchy.TextNode:
		body = "    " + p.styles.System.Render(n.Content)

	default:
		body = "    " + row.node.NodeID()
	}

	if p.showIDs {
		id := row.node.NodeID()
		if len(id) > 8 {
			id = id[:8]
		}
		body += p.styles.System.Render("  [" + id + "]")
	}
	return marker + indent + body
}

// statusGlyph returns the colored one-character status marker
func statusGlyph(styles *render.Styles, status dialect.Status) string {
	switch status {
	case dialect.StatusPass:
		return styles.Pass.Render("✓")
	case dialect.StatusFail:
		return styles.Fail.Render("✗")
	default:
		return styles.Running.Render("●")
	}
}
