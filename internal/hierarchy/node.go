package hierarchy

import "github.com/lucasdeeiroz/runlens/pkg/dialect"

// Node is a node of the derived execution tree. The tree is rebuilt
// wholesale from the flat history on every update; node ids come from the
// flat nodes and are therefore stable across rebuilds, so a renderer can
// key its own state (selection, collapse) on them.
type Node interface {
	// NodeID returns the stable id, unique within a session
	NodeID() string
}

// TextNode is a loose line outside any test
type TextNode struct {
	ID      string
	Content string
}

// NodeID implements Node
func (n *TextNode) NodeID() string { return n.ID }

// TestNode is a single test with its captured output
type TestNode struct {
	ID            string
	Name          string
	Documentation string
	Status        dialect.Status
	Logs          []string
}

// NodeID implements Node
func (n *TestNode) NodeID() string { return n.ID }

// SuiteNode is a suite containing tests, nested suites and loose text
type SuiteNode struct {
	ID            string
	Name          string
	Documentation string
	Status        dialect.Status
	Summary       string
	Dialect       dialect.Dialect
	Children      []Node
}

// NodeID implements Node
func (n *SuiteNode) NodeID() string { return n.ID }
