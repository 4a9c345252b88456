package index

import (
	"bytes"

	runlensio "github.com/lucasdeeiroz/runlens/internal/io"
)

// LineIndex stores byte offsets for each line in a file
type LineIndex struct {
	offsets []int64 // byte offset of each line start
	file    *runlensio.MappedFile
}

// BuildLineIndex scans the file and builds a line offset index
func BuildLineIndex(file *runlensio.MappedFile) (*LineIndex, error) {
	idx := &LineIndex{file: file}
	if file.Size() == 0 {
		return idx, nil
	}

	// Estimate initial capacity (assume ~100 bytes per line)
	estimatedLines := int(file.Size()/100) + 1
	idx.offsets = make([]int64, 0, estimatedLines)
	idx.offsets = append(idx.offsets, 0) // First line starts at 0

	if err := idx.scan(0); err != nil {
		return nil, err
	}
	return idx, nil
}

// scan finds line starts from the given byte position onward
func (idx *LineIndex) scan(from int64) error {
	size := idx.file.Size()

	const chunkSize = 64 * 1024 // 64KB chunks
	buf := make([]byte, chunkSize)

	pos := from
	for pos < size {
		readSize := chunkSize
		if pos+int64(readSize) > size {
			readSize = int(size - pos)
		}

		n, err := idx.file.ReadAt(buf[:readSize], pos)
		if err != nil {
			return err
		}

		// Find all newlines in this chunk
		chunk := buf[:n]
		offset := 0
		for {
			i := bytes.IndexByte(chunk[offset:], '\n')
			if i == -1 {
				break
			}
			lineStart := pos + int64(offset) + int64(i) + 1
			if lineStart < size {
				idx.offsets = append(idx.offsets, lineStart)
			}
			offset += i + 1
		}

		pos += int64(n)
	}
	return nil
}

// AppendNewLines indexes lines added after a refresh, scanning only the
// bytes past the previously known size
func (idx *LineIndex) AppendNewLines(oldSize int64) error {
	if idx.file.Size() <= oldSize {
		return nil
	}
	if len(idx.offsets) == 0 {
		idx.offsets = append(idx.offsets, 0)
		return idx.scan(0)
	}
	return idx.scan(oldSize)
}

// LineCount returns the total number of lines
func (idx *LineIndex) LineCount() int {
	return len(idx.offsets)
}

// GetLine returns the content of line at given index (0-based)
func (idx *LineIndex) GetLine(lineNum int) ([]byte, error) {
	if lineNum < 0 || lineNum >= len(idx.offsets) {
		return nil, nil
	}

	start := idx.offsets[lineNum]
	var end int64
	if lineNum+1 < len(idx.offsets) {
		end = idx.offsets[lineNum+1]
	} else {
		end = idx.file.Size()
	}

	content, err := idx.file.ReadRange(start, end)
	if err != nil {
		return nil, err
	}

	// Trim trailing newline
	content = bytes.TrimRight(content, "\r\n")
	return content, nil
}

// GetLines returns a range of lines efficiently
func (idx *LineIndex) GetLines(start, count int) ([][]byte, error) {
	if start < 0 {
		start = 0
	}
	if start >= len(idx.offsets) {
		return nil, nil
	}
	if start+count > len(idx.offsets) {
		count = len(idx.offsets) - start
	}

	lines := make([][]byte, count)
	for i := 0; i < count; i++ {
		line, err := idx.GetLine(start + i)
		if err != nil {
			return nil, err
		}
		lines[i] = line
	}
	return lines, nil
}
