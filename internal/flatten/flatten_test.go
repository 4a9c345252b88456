package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasdeeiroz/runlens/internal/config"
	"github.com/lucasdeeiroz/runlens/pkg/dialect"
)

func newFlattener() *Flattener {
	cfg := config.Default()
	return New(dialect.NewClassifier(&cfg.Dialect))
}

func kinds(history []Node) []Kind {
	out := make([]Kind, len(history))
	for i, n := range history {
		out[i] = n.Kind
	}
	return out
}

func TestProcessSkipsBlankLines(t *testing.T) {
	f := newFlattener()
	require.NoError(t, f.Process(Lines{"first", "", "   ", "second"}))

	require.Len(t, f.History(), 2)
	assert.Equal(t, "first", f.History()[0].Content)
	assert.Equal(t, "second", f.History()[1].Content)
	assert.Equal(t, 4, f.Processed(), "blank lines still advance the cursor")
}

func TestProcessStripsNoisePrefix(t *testing.T) {
	f := newFlattener()
	require.NoError(t, f.Process(Lines{"[12/40] Tap on button"}))

	require.Len(t, f.History(), 1)
	assert.Equal(t, "Tap on button", f.History()[0].Content)
}

func TestProcessMarksSystemLines(t *testing.T) {
	f := newFlattener()
	require.NoError(t, f.Process(Lines{"[System] Runner started", "Login Test"}))

	require.Len(t, f.History(), 2)
	assert.True(t, f.History()[0].System)
	assert.False(t, f.History()[1].System)
}

func TestCollapseSuiteStart(t *testing.T) {
	f := newFlattener()
	require.NoError(t, f.Process(Lines{
		"==============================",
		"Login Suite :: Authentication checks",
		"==============================",
	}))

	require.Len(t, f.History(), 1)
	start := f.History()[0]
	assert.Equal(t, KindSuiteStart, start.Kind)
	assert.Equal(t, "Login Suite", start.Name)
	assert.Equal(t, "Login Suite :: Authentication checks", start.RawTitle)
	assert.Equal(t, dialect.DialectRobot, start.Dialect)
	assert.NotEmpty(t, start.ID)
}

func TestCollapseNestedSuiteStart(t *testing.T) {
	// A nested suite has no leading rule of its own: its title sits directly
	// after the parent's start marker.
	f := newFlattener()
	require.NoError(t, f.Process(Lines{
		"==============================",
		"Parent Suite",
		"==============================",
		"Child Suite",
		"==============================",
	}))

	require.Len(t, f.History(), 2)
	assert.Equal(t, []Kind{KindSuiteStart, KindSuiteStart}, kinds(f.History()))
	assert.Equal(t, "Parent Suite", f.History()[0].Name)
	assert.Equal(t, "Child Suite", f.History()[1].Name)
}

func TestNoCollapseWithoutFraming(t *testing.T) {
	// A title line with ordinary text before it is not a suite heading
	f := newFlattener()
	require.NoError(t, f.Process(Lines{
		"some output",
		"another line",
		"==============================",
	}))

	require.Len(t, f.History(), 3)
	assert.Equal(t, []Kind{KindText, KindText, KindText}, kinds(f.History()))
}

func TestNoCollapseAfterSystemLine(t *testing.T) {
	f := newFlattener()
	require.NoError(t, f.Process(Lines{
		"==============================",
		"[System] Runner started",
		"==============================",
	}))

	require.Len(t, f.History(), 3)
	assert.Equal(t, []Kind{KindText, KindText, KindText}, kinds(f.History()))
}

func TestCollapseSuiteEnd(t *testing.T) {
	f := newFlattener()
	require.NoError(t, f.Process(Lines{
		"Login Suite | FAIL |",
		"2 tests, 1 passed, 1 failed",
	}))

	require.Len(t, f.History(), 1)
	end := f.History()[0]
	assert.Equal(t, KindSuiteEnd, end.Kind)
	assert.Equal(t, "Login Suite", end.Name)
	assert.Equal(t, dialect.StatusFail, end.Status)
	assert.Equal(t, dialect.StatusFail, end.RowStatus)
	assert.Equal(t, "2 tests, 1 passed, 1 failed", end.Summary)
}

func TestCollapseSuiteEndAllPassed(t *testing.T) {
	// The suite verdict comes from the statistics, not from the status cell
	f := newFlattener()
	require.NoError(t, f.Process(Lines{
		"Login Suite | PASS |",
		"2 tests, 2 passed, 0 failed",
	}))

	require.Len(t, f.History(), 1)
	assert.Equal(t, dialect.StatusPass, f.History()[0].Status)
	assert.Equal(t, dialect.StatusPass, f.History()[0].RowStatus)
}

func TestCollapseSuiteEndContradictingCell(t *testing.T) {
	// A passing cell under failing statistics: the suite fails, but the cell
	// verdict is preserved for a test whose own row was consumed
	f := newFlattener()
	require.NoError(t, f.Process(Lines{
		"... | PASS |",
		"3 tests, 1 passed, 2 failed",
	}))

	require.Len(t, f.History(), 1)
	assert.Equal(t, dialect.StatusFail, f.History()[0].Status)
	assert.Equal(t, dialect.StatusPass, f.History()[0].RowStatus)
}

func TestCollapseSuiteEndWithinLookback(t *testing.T) {
	f := newFlattener()
	require.NoError(t, f.Process(Lines{
		"Login Suite | FAIL |",
		"filler one",
		"filler two",
		"filler three",
		"2 tests, 1 passed, 1 failed",
	}))

	require.Len(t, f.History(), 1)
	assert.Equal(t, KindSuiteEnd, f.History()[0].Kind)
}

func TestNoCollapseBeyondLookback(t *testing.T) {
	f := newFlattener()
	require.NoError(t, f.Process(Lines{
		"Login Suite | FAIL |",
		"filler one",
		"filler two",
		"filler three",
		"filler four",
		"filler five",
		"2 tests, 1 passed, 1 failed",
	}))

	// The status row is too far back; the summary stays plain text
	require.Len(t, f.History(), 7)
	for _, n := range f.History() {
		assert.Equal(t, KindText, n.Kind)
	}
}

func TestNoCollapsePastStructuralMarker(t *testing.T) {
	f := newFlattener()
	require.NoError(t, f.Process(Lines{
		"Login Suite | FAIL |",
		"==============================",
		"Other Suite",
		"==============================",
		"2 tests, 1 passed, 1 failed",
	}))

	history := f.History()
	require.Len(t, history, 3)
	assert.Equal(t, []Kind{KindText, KindSuiteStart, KindText}, kinds(history))
}

func TestFlowSuiteMarkers(t *testing.T) {
	f := newFlattener()
	require.NoError(t, f.Process(Lines{
		"Running on Pixel 7 Emulator",
		"Running flow Login",
		"1/2 Flows Failed in 8s",
	}))

	history := f.History()
	require.Len(t, history, 3)
	assert.Equal(t, KindSuiteStart, history[0].Kind)
	assert.Equal(t, "Pixel 7 Emulator", history[0].Name)
	assert.Equal(t, dialect.DialectFlow, history[0].Dialect)
	assert.Equal(t, KindText, history[1].Kind)
	assert.Equal(t, KindSuiteEnd, history[2].Kind)
	assert.Equal(t, dialect.StatusFail, history[2].Status)
	assert.Empty(t, history[2].Name, "flow suite ends carry no name")
}

func TestIncrementalMatchesBatch(t *testing.T) {
	lines := []string{
		"==============================",
		"Login Suite :: Authentication checks",
		"==============================",
		"Login Test :: happy path",
		"step output",
		"Login Test :: happy path | PASS |",
		"------------------------------",
		"Login Suite | PASS |",
		"1 test, 1 passed, 0 failed",
	}

	batch := newFlattener()
	require.NoError(t, batch.Process(Lines(lines)))

	incremental := newFlattener()
	for i := 1; i <= len(lines); i++ {
		require.NoError(t, incremental.Process(Lines(lines[:i])))
	}

	require.Equal(t, len(batch.History()), len(incremental.History()))
	for i := range batch.History() {
		want, got := batch.History()[i], incremental.History()[i]
		assert.Equal(t, want.Kind, got.Kind, "node %d", i)
		assert.Equal(t, want.Content, got.Content, "node %d", i)
		assert.Equal(t, want.Name, got.Name, "node %d", i)
		assert.Equal(t, want.Status, got.Status, "node %d", i)
	}
}

func TestStableIDsAcrossGrowth(t *testing.T) {
	f := newFlattener()
	require.NoError(t, f.Process(Lines{"line one", "line two"}))

	id0 := f.History()[0].ID
	id1 := f.History()[1].ID
	require.NotEqual(t, id0, id1)

	require.NoError(t, f.Process(Lines{"line one", "line two", "line three"}))
	require.Len(t, f.History(), 3)
	assert.Equal(t, id0, f.History()[0].ID)
	assert.Equal(t, id1, f.History()[1].ID)
}

func TestShrinkingSourceResets(t *testing.T) {
	f := newFlattener()
	require.NoError(t, f.Process(Lines{"one", "two", "three"}))
	require.Equal(t, 3, f.Processed())

	require.NoError(t, f.Process(Lines{"fresh"}))
	assert.Equal(t, 1, f.Processed())
	require.Len(t, f.History(), 1)
	assert.Equal(t, "fresh", f.History()[0].Content)
}
