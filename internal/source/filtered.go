package source

import "bytes"

// FilteredProvider wraps a LineProvider and filters lines by substring.
// It backs the raw view's filter mode; the parsing session always consumes
// the unfiltered source.
type FilteredProvider struct {
	source LineProvider

	// Text filter: substring match
	textFilter []byte

	// Cached filtered indices (original line numbers that pass the filter)
	filteredIndices []int
	dirty           bool
}

// NewFilteredProvider creates a filtered provider
func NewFilteredProvider(source LineProvider) *FilteredProvider {
	return &FilteredProvider{
		source: source,
		dirty:  true,
	}
}

// SetTextFilter sets the text substring filter
func (f *FilteredProvider) SetTextFilter(text string) {
	if text == "" {
		f.textFilter = nil
	} else {
		f.textFilter = []byte(text)
	}
	f.dirty = true
}

// ClearTextFilter removes the text filter
func (f *FilteredProvider) ClearTextFilter() {
	f.textFilter = nil
	f.dirty = true
}

// GetTextFilter returns the current text filter
func (f *FilteredProvider) GetTextFilter() string {
	return string(f.textFilter)
}

// IsFiltered returns true if a filter is active
func (f *FilteredProvider) IsFiltered() bool {
	return len(f.textFilter) > 0
}

// MarkDirty marks the filter index as needing rebuild (call after the
// underlying source grew)
func (f *FilteredProvider) MarkDirty() {
	f.dirty = true
}

// rebuildIndex rebuilds the filtered index if dirty
func (f *FilteredProvider) rebuildIndex() {
	if !f.dirty {
		return
	}

	f.filteredIndices = nil

	// If no filter, don't build an index (use source directly)
	if len(f.textFilter) == 0 {
		f.dirty = false
		return
	}

	total := f.source.LineCount()
	for i := 0; i < total; i++ {
		line, err := f.source.GetLine(i)
		if err != nil || line == nil {
			continue
		}
		if !bytes.Contains(line.Content, f.textFilter) {
			continue
		}
		f.filteredIndices = append(f.filteredIndices, i)
	}

	f.dirty = false
}

// LineCount returns total number of filtered lines
func (f *FilteredProvider) LineCount() int {
	f.rebuildIndex()

	if len(f.textFilter) == 0 {
		return f.source.LineCount()
	}
	return len(f.filteredIndices)
}

// GetLine returns line at filtered index
func (f *FilteredProvider) GetLine(index int) (*Line, error) {
	f.rebuildIndex()

	if len(f.textFilter) == 0 {
		return f.source.GetLine(index)
	}

	if index < 0 || index >= len(f.filteredIndices) {
		return nil, nil
	}

	originalIndex := f.filteredIndices[index]
	line, err := f.source.GetLine(originalIndex)
	if err != nil {
		return nil, err
	}

	// Keep original index for display
	line.OriginalIndex = originalIndex
	return line, nil
}

// GetLines returns a range of filtered lines
func (f *FilteredProvider) GetLines(start, count int) ([]*Line, error) {
	f.rebuildIndex()

	if len(f.textFilter) == 0 {
		return f.source.GetLines(start, count)
	}

	var lines []*Line
	for i := start; i < start+count && i < len(f.filteredIndices); i++ {
		line, err := f.GetLine(i)
		if err != nil {
			return lines, err
		}
		if line != nil {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// OriginalLineNumber returns the original line number for a filtered index
func (f *FilteredProvider) OriginalLineNumber(filteredIndex int) int {
	f.rebuildIndex()

	if len(f.textFilter) == 0 {
		return filteredIndex
	}

	if filteredIndex < 0 || filteredIndex >= len(f.filteredIndices) {
		return -1
	}
	return f.filteredIndices[filteredIndex]
}
