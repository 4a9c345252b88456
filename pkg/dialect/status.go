package dialect

import "strings"

// Status represents the execution state of a test or suite
type Status int

const (
	StatusRunning Status = iota
	StatusPass
	StatusFail
)

// String returns the display form of a status
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	default:
		return "RUNNING"
	}
}

// NormalizeName strips runner-side truncation markers (trailing dots and
// ellipsis runes) so truncated and full suite names compare equal
func NormalizeName(name string) string {
	s := strings.TrimSpace(name)
	s = strings.TrimRight(s, ".")
	s = strings.TrimRight(s, "…")
	s = strings.TrimRight(s, ".")
	return strings.TrimSpace(s)
}

// NamesMatch reports whether two suite names refer to the same suite,
// tolerating truncation: normalized names match exactly, or either is a
// prefix of the other
func NamesMatch(a, b string) bool {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == nb {
		return true
	}
	return strings.HasPrefix(na, nb) || strings.HasPrefix(nb, na)
}

// SplitDocumentation splits a heading into its name and the optional
// documentation suffix after the " :: " delimiter
func SplitDocumentation(s string) (name, documentation string) {
	if i := strings.Index(s, DocSeparator); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(DocSeparator):])
	}
	return strings.TrimSpace(s), ""
}
