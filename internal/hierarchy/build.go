package hierarchy

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lucasdeeiroz/runlens/internal/flatten"
	"github.com/lucasdeeiroz/runlens/pkg/dialect"
)

// Builder assembles the execution tree from a flat node history. Every call
// to Build replays the entire history through a stack machine; the expensive
// part (classifying raw lines) already happened once in the flattener, so a
// full replay stays cheap.
//
// Malformed or surprising input never fails a build: anything unrecognized
// stays visible as loose text, and close events that match nothing are
// dropped and counted.
type Builder struct {
	classifier *dialect.Classifier
	log        *logrus.Logger

	// Anomaly counters, kept across builds for diagnosability
	unmatchedSuiteEnds int
	syntheticResults   int
}

// buildState is the per-replay state: the open suite stack (innermost last)
// and the single test currently accumulating log lines.
type buildState struct {
	root    []Node
	stack   []*SuiteNode
	current *TestNode
}

// NewBuilder creates a builder using the given classifier
func NewBuilder(classifier *dialect.Classifier, log *logrus.Logger) *Builder {
	return &Builder{classifier: classifier, log: log}
}

// UnmatchedSuiteEnds returns how many suite close events matched no open suite
func (b *Builder) UnmatchedSuiteEnds() int {
	return b.unmatchedSuiteEnds
}

// SyntheticResults returns how many instant test results had to be synthesized
func (b *Builder) SyntheticResults() int {
	return b.syntheticResults
}

// Build replays the flat history and returns the root-level tree nodes.
// The input is only read; replaying the same history twice yields an
// identical tree.
func (b *Builder) Build(history []flatten.Node) []Node {
	st := &buildState{}

	for i := range history {
		node := &history[i]
		switch node.Kind {
		case flatten.KindSuiteStart:
			b.openSuite(st, node)
		case flatten.KindSuiteEnd:
			b.closeSuite(st, node)
		case flatten.KindText:
			b.text(st, node)
		default:
			// Unknown kinds stay visible rather than vanish
			b.attach(st, &TextNode{ID: node.ID, Content: node.Content})
		}
	}

	b.closeCurrentTest(st)
	return st.root
}

// openSuite pushes a new running suite under the active parent
func (b *Builder) openSuite(st *buildState, node *flatten.Node) {
	b.closeCurrentTest(st)

	_, documentation := dialect.SplitDocumentation(node.RawTitle)
	suite := &SuiteNode{
		ID:            node.ID,
		Name:          node.Name,
		Documentation: documentation,
		Status:        dialect.StatusRunning,
		Dialect:       node.Dialect,
	}
	b.attach(st, suite)
	st.stack = append(st.stack, suite)
}

// closeSuite resolves a suite end event against the open suites, innermost
// first, tolerating truncated names. An event that matches nothing is
// dropped; the suites stay open.
func (b *Builder) closeSuite(st *buildState, node *flatten.Node) {
	if current := st.current; current != nil {
		b.closeCurrentTest(st)
		// In compact output the suite footer consumed the test's wrapped
		// status row; its verdict cell lives on the end event
		if current.Status == dialect.StatusRunning {
			current.Status = node.RowStatus
		}
	}

	for i := len(st.stack) - 1; i >= 0; i-- {
		suite := st.stack[i]
		if !dialect.NamesMatch(node.Name, suite.Name) {
			continue
		}
		suite.Status = node.Status
		suite.Summary = node.Summary
		if node.Documentation != "" {
			suite.Documentation = node.Documentation
		}
		st.stack = st.stack[:i]
		return
	}

	b.unmatchedSuiteEnds++
	b.log.WithFields(logrus.Fields{
		"suite":  node.Name,
		"status": node.Status.String(),
	}).Warn("suite end matched no open suite")
}

// text dispatches a flat text node. The match order mirrors the fixed
// classification precedence: rule lines, dialect test markers, system
// lines, then generic text.
func (b *Builder) text(st *buildState, node *flatten.Node) {
	line := node.Content

	switch {
	case dialect.IsDoubleRule(line) || dialect.IsSingleRule(line):
		// Rules separate tests; the suite stack is untouched
		b.closeCurrentTest(st)

	case dialect.IsFlowTestStart(line):
		name, _ := dialect.ParseFlowTestStart(line)
		b.startTest(st, node, name, "")

	case dialect.IsBuildTestStart(line):
		name, _ := dialect.ParseBuildTestStart(line)
		b.startTest(st, node, name, "")

	case dialect.IsFlowTestEnd(line):
		name, status, _, _ := dialect.ParseFlowTestEnd(line)
		b.endTest(st, node, name, status)

	case dialect.IsBuildTestEnd(line):
		status, _ := dialect.ParseBuildTestEnd(line)
		b.endTest(st, node, strings.TrimSpace(line), status)

	case node.System:
		b.systemLine(st, node)

	case st.current != nil:
		st.current.Logs = append(st.current.Logs, line)

	case b.activeDialect(st) != dialect.DialectFlow:
		b.implicitTest(st, node)

	default:
		b.attach(st, &TextNode{ID: node.ID, Content: line})
	}
}

// startTest opens a new running test under the active parent. The marker
// line itself becomes the test's first log line.
func (b *Builder) startTest(st *buildState, node *flatten.Node, name, documentation string) {
	b.closeCurrentTest(st)

	test := &TestNode{
		ID:            node.ID,
		Name:          name,
		Documentation: documentation,
		Status:        dialect.StatusRunning,
		Logs:          []string{node.Content},
	}
	b.attach(st, test)
	st.current = test
}

// endTest resolves a test end marker. With no test open the runner emitted
// start and end as one instantaneous event, so a terminal test is
// synthesized in place.
func (b *Builder) endTest(st *buildState, node *flatten.Node, name string, status dialect.Status) {
	if st.current != nil {
		st.current.Logs = append(st.current.Logs, node.Content)
		st.current.Status = status
		st.current = nil
		return
	}

	b.syntheticResults++
	b.attach(st, &TestNode{
		ID:     node.ID,
		Name:   name,
		Status: status,
		Logs:   []string{node.Content},
	})
}

// systemLine handles runner diagnostics. Termination lines force every
// still-running test and suite to the resolved terminal status, so an
// aborted run never stays "running" forever.
func (b *Builder) systemLine(st *buildState, node *flatten.Node) {
	if st.current != nil {
		st.current.Logs = append(st.current.Logs, node.Content)
	}

	if b.classifier.IsTermination(node.Content) {
		status := b.classifier.TerminationStatus(node.Content)
		if st.current != nil && st.current.Status == dialect.StatusRunning {
			st.current.Status = status
		}
		st.current = nil
		for _, suite := range st.stack {
			if suite.Status == dialect.StatusRunning {
				suite.Status = status
			}
		}
		st.stack = st.stack[:0]
		return
	}

	if st.current == nil {
		b.attach(st, &TextNode{ID: node.ID, Content: node.Content})
	}
}

// implicitTest starts a test from a bare line: outside flow-runner suites a
// non-marker line is taken as a test name, optionally carrying an embedded
// documentation suffix and status cell.
func (b *Builder) implicitTest(st *buildState, node *flatten.Node) {
	line := strings.TrimSpace(node.Content)

	name := line
	status := dialect.StatusRunning
	if rowName, rowStatus, ok := dialect.ParseStatusRow(line); ok {
		name = rowName
		status = rowStatus
	}
	name, documentation := dialect.SplitDocumentation(name)

	test := &TestNode{
		ID:            node.ID,
		Name:          name,
		Documentation: documentation,
		Status:        status,
	}
	b.attach(st, test)

	// An embedded status means the row was already terminal
	if status == dialect.StatusRunning {
		st.current = test
	}
}

// closeCurrentTest finalizes the open test, if any: the most recent tabular
// status row among its logs decides the verdict, otherwise the status is
// left as it stands.
func (b *Builder) closeCurrentTest(st *buildState) {
	if st.current == nil {
		return
	}

	for i := len(st.current.Logs) - 1; i >= 0; i-- {
		if _, status, ok := dialect.ParseStatusRow(st.current.Logs[i]); ok {
			st.current.Status = status
			break
		}
	}
	st.current = nil
}

// attach adds a node to the active parent: the innermost open suite, or the
// tree root when no suite is open
func (b *Builder) attach(st *buildState, node Node) {
	if len(st.stack) > 0 {
		parent := st.stack[len(st.stack)-1]
		parent.Children = append(parent.Children, node)
		return
	}
	st.root = append(st.root, node)
}

// activeDialect reports the dialect of the innermost open suite
func (b *Builder) activeDialect(st *buildState) dialect.Dialect {
	if len(st.stack) == 0 {
		return dialect.DialectNone
	}
	return st.stack[len(st.stack)-1].Dialect
}
