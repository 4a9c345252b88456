package flatten

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lucasdeeiroz/runlens/pkg/dialect"
)

// Kind discriminates the flat node variants
type Kind int

const (
	KindText Kind = iota
	KindSuiteStart
	KindSuiteEnd
)

// Node is one entry of the flat history: a classified raw line. The history
// is the persistent intermediate form between raw runner output and the
// derived execution tree; ids are assigned here, once, and survive rebuilds.
type Node struct {
	Kind Kind
	ID   string

	// KindText
	Content string
	System  bool

	// KindSuiteStart
	Name     string
	RawTitle string
	Dialect  dialect.Dialect

	// KindSuiteEnd
	Status        dialect.Status
	RowStatus     dialect.Status // verdict cell of the consumed status row
	Documentation string
	Summary       string
}

// Source provides the raw lines observed so far, identified by position.
// Line counts only grow; a smaller count than previously seen means the
// producer cleared its buffer.
type Source interface {
	LineCount() int
	Line(i int) (string, error)
}

// Lines adapts a plain string slice to a Source
type Lines []string

// LineCount returns the number of lines
func (l Lines) LineCount() int { return len(l) }

// Line returns the line at index i
func (l Lines) Line(i int) (string, error) { return l[i], nil }

// How far back a summary row may look for its matching status row
const suiteEndLookback = 5

// Flattener converts newly arrived raw lines into flat nodes, classifying
// each line exactly once. It keeps a position cursor so repeated calls with
// a growing source only touch the new tail.
type Flattener struct {
	classifier *dialect.Classifier
	processed  int
	history    []Node
}

// New creates a flattener using the given classifier
func New(classifier *dialect.Classifier) *Flattener {
	return &Flattener{classifier: classifier}
}

// Processed returns how many raw lines have been consumed
func (f *Flattener) Processed() int {
	return f.processed
}

// History returns the flat node history built so far.
// Callers must treat it as read-only.
func (f *Flattener) History() []Node {
	return f.history
}

// Reset discards all state, as if no lines had ever been seen
func (f *Flattener) Reset() {
	f.processed = 0
	f.history = nil
}

// Process consumes the lines appended to src since the last call. If the
// source shrank, all state is discarded first and the source is re-read
// from the beginning.
func (f *Flattener) Process(src Source) error {
	count := src.LineCount()
	if count < f.processed {
		f.Reset()
	}

	for i := f.processed; i < count; i++ {
		line, err := src.Line(i)
		if err != nil {
			return err
		}
		f.appendLine(line)
	}

	f.processed = count
	return nil
}

// appendLine classifies one raw line and appends (or collapses) flat nodes.
// Unrecognized lines always degrade to plain text; nothing here can fail.
func (f *Flattener) appendLine(raw string) {
	line := strings.TrimRight(f.classifier.StripNoise(raw), "\r\n")
	if strings.TrimSpace(line) == "" {
		return
	}

	switch {
	case dialect.IsDoubleRule(line):
		if f.collapseSuiteStart() {
			return
		}
		f.pushText(line)

	case dialect.IsSummaryRow(line):
		if f.collapseSuiteEnd(line) {
			return
		}
		f.pushText(line)

	case dialect.IsFlowSuiteStart(line):
		name, _ := dialect.ParseFlowSuiteStart(line)
		f.history = append(f.history, Node{
			Kind:     KindSuiteStart,
			ID:       uuid.NewString(),
			Name:     name,
			RawTitle: strings.TrimSpace(line),
			Dialect:  dialect.DialectFlow,
		})

	case dialect.IsFlowSuiteEnd(line):
		status, _ := dialect.ParseFlowSuiteEnd(line)
		f.history = append(f.history, Node{
			Kind:    KindSuiteEnd,
			ID:      uuid.NewString(),
			Status:  status,
			Summary: strings.TrimSpace(line),
		})

	default:
		f.pushText(line)
	}
}

func (f *Flattener) pushText(line string) {
	f.history = append(f.history, Node{
		Kind:    KindText,
		ID:      uuid.NewString(),
		Content: line,
		System:  f.classifier.IsSystem(line),
	})
}

// collapseSuiteStart recognizes the two-line "title above a rule" framing.
// Called on a double rule line: if the previous node is a plain (non-system,
// non-rule) text and the node before that is another double rule or a suite
// boundary, the previous text was a suite title. The title (and the leading
// rule, if present) are replaced by a single SuiteStart marker.
func (f *Flattener) collapseSuiteStart() bool {
	n := len(f.history)
	if n < 2 {
		return false
	}

	prior := f.history[n-1]
	if prior.Kind != KindText || prior.System {
		return false
	}
	if dialect.IsDoubleRule(prior.Content) || dialect.IsSingleRule(prior.Content) {
		return false
	}

	before := f.history[n-2]
	framed := before.Kind == KindSuiteStart || before.Kind == KindSuiteEnd ||
		(before.Kind == KindText && dialect.IsDoubleRule(before.Content))
	if !framed {
		return false
	}

	title := strings.TrimSpace(prior.Content)
	name, _ := dialect.SplitDocumentation(title)

	// Drop the title, and the leading rule when one is there
	cut := n - 1
	if before.Kind == KindText && dialect.IsDoubleRule(before.Content) {
		cut = n - 2
	}
	f.history = f.history[:cut]

	f.history = append(f.history, Node{
		Kind:     KindSuiteStart,
		ID:       uuid.NewString(),
		Name:     name,
		RawTitle: title,
		Dialect:  dialect.DialectRobot,
	})
	return true
}

// collapseSuiteEnd recognizes the suite footer: a statistics row preceded
// (within a few nodes) by the suite's own status row. The status row and
// everything after it are replaced by a single SuiteEnd carrying the name
// from the status row and the verdict derived from the statistics.
func (f *Flattener) collapseSuiteEnd(summaryLine string) bool {
	_, _, failed, ok := dialect.ParseSummaryRow(summaryLine)
	if !ok {
		return false
	}

	n := len(f.history)
	for i := n - 1; i >= 0 && i >= n-suiteEndLookback; i-- {
		node := f.history[i]
		if node.Kind != KindText {
			// Never rewrite past a structural marker
			return false
		}
		name, rowStatus, rowOK := dialect.ParseStatusRow(node.Content)
		if !rowOK {
			continue
		}

		status := dialect.StatusPass
		if failed > 0 {
			status = dialect.StatusFail
		}
		name, documentation := dialect.SplitDocumentation(name)

		f.history = f.history[:i]
		f.history = append(f.history, Node{
			Kind:          KindSuiteEnd,
			ID:            uuid.NewString(),
			Name:          name,
			Status:        status,
			RowStatus:     rowStatus,
			Documentation: documentation,
			Summary:       strings.TrimSpace(summaryLine),
		})
		return true
	}
	return false
}
