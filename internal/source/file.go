package source

import (
	"github.com/lucasdeeiroz/runlens/internal/index"
	runlensio "github.com/lucasdeeiroz/runlens/internal/io"
)

// FileSource provides lines from a single, possibly still growing, file
type FileSource struct {
	file      *runlensio.MappedFile
	lineIndex *index.LineIndex
	path      string
}

// NewFileSource creates a new file source
func NewFileSource(path string) (*FileSource, error) {
	file, err := runlensio.OpenMapped(path)
	if err != nil {
		return nil, err
	}

	lineIndex, err := index.BuildLineIndex(file)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &FileSource{
		file:      file,
		lineIndex: lineIndex,
		path:      path,
	}, nil
}

// LineCount returns total number of lines
func (s *FileSource) LineCount() int {
	return s.lineIndex.LineCount()
}

// GetLine returns line at index
func (s *FileSource) GetLine(idx int) (*Line, error) {
	content, err := s.lineIndex.GetLine(idx)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	return &Line{
		Content:       content,
		OriginalIndex: idx,
	}, nil
}

// GetLines returns a range of lines
func (s *FileSource) GetLines(start, count int) ([]*Line, error) {
	rawLines, err := s.lineIndex.GetLines(start, count)
	if err != nil {
		return nil, err
	}

	lines := make([]*Line, len(rawLines))
	for i, content := range rawLines {
		lines[i] = &Line{
			Content:       content,
			OriginalIndex: start + i,
		}
	}
	return lines, nil
}

// Line returns the text of a single line; the string form used by the
// parsing session
func (s *FileSource) Line(idx int) (string, error) {
	content, err := s.lineIndex.GetLine(idx)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Close closes the file source
func (s *FileSource) Close() error {
	return s.file.Close()
}

// Path returns the file path
func (s *FileSource) Path() string {
	return s.path
}

// Refresh checks the file for changes. It returns the number of new lines
// and whether the file shrank; on shrink the index is rebuilt from scratch
// and callers must treat all previously read lines as gone.
func (s *FileSource) Refresh() (newLines int, reset bool, err error) {
	oldSize := s.file.Size()
	oldLineCount := s.lineIndex.LineCount()

	grew, shrank, err := s.file.Refresh()
	if err != nil {
		return 0, false, err
	}

	if shrank {
		rebuilt, err := index.BuildLineIndex(s.file)
		if err != nil {
			return 0, false, err
		}
		s.lineIndex = rebuilt
		return s.lineIndex.LineCount(), true, nil
	}

	if !grew {
		return 0, false, nil
	}

	if err := s.lineIndex.AppendNewLines(oldSize); err != nil {
		return 0, false, err
	}
	return s.lineIndex.LineCount() - oldLineCount, false, nil
}
