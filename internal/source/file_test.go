package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFileSourceReadsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	writeFile(t, path, "first\nsecond\nthird\n")

	src, err := NewFileSource(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 3, src.LineCount())

	line, err := src.GetLine(1)
	require.NoError(t, err)
	assert.Equal(t, "second", string(line.Content))
	assert.Equal(t, 1, line.OriginalIndex)

	text, err := src.Line(2)
	require.NoError(t, err)
	assert.Equal(t, "third", text)
}

func TestFileSourceEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.log")
	writeFile(t, path, "")

	src, err := NewFileSource(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 0, src.LineCount())
}

func TestFileSourceRefreshOnGrowth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	writeFile(t, path, "first\n")

	src, err := NewFileSource(path)
	require.NoError(t, err)
	defer src.Close()
	require.Equal(t, 1, src.LineCount())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("second\nthird\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	newLines, reset, err := src.Refresh()
	require.NoError(t, err)
	assert.Equal(t, 2, newLines)
	assert.False(t, reset)
	assert.Equal(t, 3, src.LineCount())

	text, err := src.Line(2)
	require.NoError(t, err)
	assert.Equal(t, "third", text)
}

func TestFileSourceRefreshOnShrink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	writeFile(t, path, "first\nsecond\nthird\n")

	src, err := NewFileSource(path)
	require.NoError(t, err)
	defer src.Close()
	require.Equal(t, 3, src.LineCount())

	writeFile(t, path, "fresh\n")

	_, reset, err := src.Refresh()
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, 1, src.LineCount())

	text, err := src.Line(0)
	require.NoError(t, err)
	assert.Equal(t, "fresh", text)
}

func TestFileSourceRefreshNoChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	writeFile(t, path, "only\n")

	src, err := NewFileSource(path)
	require.NoError(t, err)
	defer src.Close()

	newLines, reset, err := src.Refresh()
	require.NoError(t, err)
	assert.Zero(t, newLines)
	assert.False(t, reset)
}
