package source

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memProvider is a LineProvider over a string slice, for tests
type memProvider struct {
	lines []string
}

func (m *memProvider) LineCount() int {
	return len(m.lines)
}

func (m *memProvider) GetLine(index int) (*Line, error) {
	if index < 0 || index >= len(m.lines) {
		return nil, nil
	}
	return &Line{Content: []byte(m.lines[index]), OriginalIndex: index}, nil
}

func (m *memProvider) GetLines(start, count int) ([]*Line, error) {
	var out []*Line
	for i := start; i < start+count && i < len(m.lines); i++ {
		line, err := m.GetLine(i)
		if err != nil {
			return out, err
		}
		out = append(out, line)
	}
	return out, nil
}

func TestFilteredProviderPassThrough(t *testing.T) {
	f := NewFilteredProvider(&memProvider{lines: []string{"a", "b", "c"}})

	assert.False(t, f.IsFiltered())
	assert.Equal(t, 3, f.LineCount())

	line, err := f.GetLine(1)
	require.NoError(t, err)
	assert.Equal(t, "b", string(line.Content))
	assert.Equal(t, 1, f.OriginalLineNumber(1))
}

func TestFilteredProviderSubstring(t *testing.T) {
	f := NewFilteredProvider(&memProvider{lines: []string{
		"Running flow Login",
		"step output",
		"[Failed] Login (3s)",
	}})

	f.SetTextFilter("Login")
	assert.True(t, f.IsFiltered())
	assert.Equal(t, 2, f.LineCount())

	line, err := f.GetLine(1)
	require.NoError(t, err)
	assert.Equal(t, "[Failed] Login (3s)", string(line.Content))
	assert.Equal(t, 2, line.OriginalIndex)
	assert.Equal(t, 2, f.OriginalLineNumber(1))

	f.ClearTextFilter()
	assert.False(t, f.IsFiltered())
	assert.Equal(t, 3, f.LineCount())
}

func TestFilteredProviderMarkDirty(t *testing.T) {
	src := &memProvider{lines: []string{"match one"}}
	f := NewFilteredProvider(src)
	f.SetTextFilter("match")
	require.Equal(t, 1, f.LineCount())

	src.lines = append(src.lines, "no", "match two")
	assert.Equal(t, 1, f.LineCount(), "cached until marked dirty")

	f.MarkDirty()
	assert.Equal(t, 2, f.LineCount())
}

func TestFilteredProviderOutOfRange(t *testing.T) {
	f := NewFilteredProvider(&memProvider{lines: []string{"a"}})
	f.SetTextFilter("a")

	line, err := f.GetLine(5)
	require.NoError(t, err)
	assert.Nil(t, line)
	assert.Equal(t, -1, f.OriginalLineNumber(5))
}

func TestFilteredProviderLargeInput(t *testing.T) {
	var lines []string
	for i := 0; i < 1000; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	f := NewFilteredProvider(&memProvider{lines: lines})
	f.SetTextFilter("line 99")

	// 99 and 990-999
	assert.Equal(t, 11, f.LineCount())
}
