package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasdeeiroz/runlens/internal/hierarchy"
	"github.com/lucasdeeiroz/runlens/internal/source"
)

// Writer extracts portions of a run to standalone files: one test's logs, or
// the raw view's filtered lines. Exports land next to the run file unless an
// explicit directory is set.
type Writer struct {
	dir string
}

// NewWriter creates a writer that exports beside the run file
func NewWriter() *Writer {
	return &Writer{}
}

// SetDir overrides the export directory
func (w *Writer) SetDir(dir string) {
	w.dir = dir
}

// ExportTest writes a test's captured logs to a file and returns its path
func (w *Writer) ExportTest(runPath string, test *hierarchy.TestNode) (string, error) {
	if test == nil {
		return "", fmt.Errorf("no test selected")
	}

	outPath := w.exportPath(runPath, sanitizeName(test.Name))
	outFile, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer outFile.Close()

	header := fmt.Sprintf("%s [%s]\n", test.Name, test.Status)
	if test.Documentation != "" {
		header += test.Documentation + "\n"
	}
	if _, err := outFile.WriteString(header + "\n"); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for _, line := range test.Logs {
		if _, err := outFile.WriteString(line + "\n"); err != nil {
			os.Remove(outPath)
			return "", fmt.Errorf("failed to write log line: %w", err)
		}
	}

	return outPath, nil
}

// ExportFiltered writes the lines currently visible through a filter
func (w *Writer) ExportFiltered(runPath string, filtered *source.FilteredProvider) (string, error) {
	outPath := w.exportPath(runPath, "filtered")
	outFile, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer outFile.Close()

	count := filtered.LineCount()
	for i := 0; i < count; i++ {
		line, err := filtered.GetLine(i)
		if err != nil {
			os.Remove(outPath)
			return "", fmt.Errorf("failed to read line %d: %w", i, err)
		}
		if line == nil {
			continue
		}
		if _, err := outFile.Write(append(line.Content, '\n')); err != nil {
			os.Remove(outPath)
			return "", fmt.Errorf("failed to write line: %w", err)
		}
	}

	return outPath, nil
}

// exportPath builds the destination filename
func (w *Writer) exportPath(runPath, label string) string {
	dir := w.dir
	if dir == "" {
		dir = filepath.Dir(runPath)
	}
	base := strings.TrimSuffix(filepath.Base(runPath), filepath.Ext(runPath))
	stamp := time.Now().Format("20060102-150405")
	return filepath.Join(dir, fmt.Sprintf("%s-%s-%s.log", base, label, stamp))
}

// sanitizeName makes a test name safe for use in a filename
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "test"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
