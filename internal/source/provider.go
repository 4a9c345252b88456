package source

// Line represents a single raw line with its position metadata
type Line struct {
	Content       []byte
	OriginalIndex int // line number in the original file
}

// LineProvider is the core abstraction for accessing raw lines.
// The viewport and the parsing session only interact with this interface.
type LineProvider interface {
	// LineCount returns total number of lines
	LineCount() int

	// GetLine returns line at index (0-based)
	GetLine(index int) (*Line, error)

	// GetLines returns a range of lines efficiently
	GetLines(start, count int) ([]*Line, error)
}
