package dialect

import (
	"regexp"
	"strings"

	"github.com/lucasdeeiroz/runlens/internal/config"
)

// Dialect identifies which runner convention produced a marker
type Dialect int

const (
	DialectNone Dialect = iota
	DialectRobot
	DialectFlow
	DialectBuild
)

// DocSeparator splits a heading into name and documentation
const DocSeparator = " :: "

const ruleMinWidth = 10

var (
	statusRowRe    = regexp.MustCompile(`^(.*?)\s*\|\s*(PASS|FAIL)\s*\|`)
	summaryRowRe   = regexp.MustCompile(`^(\d+) tests?, (\d+) passed, (\d+) failed`)
	flowSuiteEndRe = regexp.MustCompile(`^(?:(\d+)/(\d+)\s+)?Flows? (Passed|Failed) in\b`)
	flowTestEndRe  = regexp.MustCompile(`^\[(Passed|Failed)\]\s+(.*?)(?:\s+\(([^)]+)\))?\s*$`)
	buildCountsRe  = regexp.MustCompile(`Tests run:\s*(\d+),\s*Failures:\s*(\d+)(?:,\s*Errors:\s*(\d+))?`)
	exitCodeRe     = regexp.MustCompile(`(?i)exit code:?\s*(-?\d+)`)
)

// Marker phrases for the supported dialects
const (
	flowTestStartPrefix  = "Running flow "
	buildTestStartPrefix = "[INFO] Running "
)

var flowSuiteStartPrefixes = []string{"Running on ", "Will run "}

// IsDoubleRule reports whether the line is a suite-level separator
// (a run of at least ten '=' characters and nothing else)
func IsDoubleRule(line string) bool {
	return isRule(line, '=')
}

// IsSingleRule reports whether the line is a test-level separator
// (a run of at least ten '-' characters and nothing else)
func IsSingleRule(line string) bool {
	return isRule(line, '-')
}

func isRule(line string, ch byte) bool {
	s := strings.TrimSpace(line)
	if len(s) < ruleMinWidth {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != ch {
			return false
		}
	}
	return true
}

// IsStatusRow reports whether the line is a tabular "name | PASS |" row
func IsStatusRow(line string) bool {
	return statusRowRe.MatchString(strings.TrimSpace(line))
}

// ParseStatusRow extracts the name cell and verdict from a tabular status row
func ParseStatusRow(line string) (name string, status Status, ok bool) {
	m := statusRowRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", StatusRunning, false
	}
	return strings.TrimSpace(m[1]), statusFromWord(m[2]), true
}

// IsSummaryRow reports whether the line is a "N tests, P passed, F failed" row
func IsSummaryRow(line string) bool {
	return summaryRowRe.MatchString(strings.TrimSpace(line))
}

// ParseSummaryRow extracts the counters from a statistics row
func ParseSummaryRow(line string) (total, passed, failed int, ok bool) {
	m := summaryRowRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, 0, 0, false
	}
	return atoi(m[1]), atoi(m[2]), atoi(m[3]), true
}

// IsFlowSuiteStart reports whether the line opens a flow-runner suite
func IsFlowSuiteStart(line string) bool {
	_, ok := ParseFlowSuiteStart(line)
	return ok
}

// ParseFlowSuiteStart extracts the suite name from a flow-runner suite marker
func ParseFlowSuiteStart(line string) (name string, ok bool) {
	s := strings.TrimSpace(line)
	for _, prefix := range flowSuiteStartPrefixes {
		if strings.HasPrefix(s, prefix) {
			rest := strings.TrimSpace(strings.TrimPrefix(s, prefix))
			if rest == "" {
				rest = s
			}
			return rest, true
		}
	}
	return "", false
}

// IsFlowSuiteEnd reports whether the line closes a flow-runner suite
// ("Flow Passed in 12s", optionally prefixed with an "n/m" ratio)
func IsFlowSuiteEnd(line string) bool {
	_, ok := ParseFlowSuiteEnd(line)
	return ok
}

// ParseFlowSuiteEnd extracts the verdict from a flow-runner suite end marker
func ParseFlowSuiteEnd(line string) (status Status, ok bool) {
	m := flowSuiteEndRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return StatusRunning, false
	}
	return statusFromWord(m[3]), true
}

// IsFlowTestStart reports whether the line starts a flow-runner test
func IsFlowTestStart(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), flowTestStartPrefix)
}

// ParseFlowTestStart extracts the flow name from a "Running flow " marker
func ParseFlowTestStart(line string) (name string, ok bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, flowTestStartPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(s, flowTestStartPrefix)), true
}

// IsFlowTestEnd reports whether the line ends a flow-runner test
// ("[Passed] Login (3s)")
func IsFlowTestEnd(line string) bool {
	return flowTestEndRe.MatchString(strings.TrimSpace(line))
}

// ParseFlowTestEnd extracts name, verdict and duration from a flow test end marker
func ParseFlowTestEnd(line string) (name string, status Status, duration string, ok bool) {
	m := flowTestEndRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", StatusRunning, "", false
	}
	return strings.TrimSpace(m[2]), statusFromWord(m[1]), m[3], true
}

// IsBuildTestStart reports whether the line starts a build-runner test class
func IsBuildTestStart(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), buildTestStartPrefix)
}

// ParseBuildTestStart extracts the class name from an "[INFO] Running " marker
func ParseBuildTestStart(line string) (name string, ok bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, buildTestStartPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(s, buildTestStartPrefix)), true
}

// IsBuildTestEnd reports whether the line carries build-runner test counters
func IsBuildTestEnd(line string) bool {
	return strings.Contains(line, "Tests run:") && strings.Contains(line, "Failures:")
}

// ParseBuildTestEnd derives the verdict from a "Tests run: N, Failures: F" line
func ParseBuildTestEnd(line string) (status Status, ok bool) {
	if !IsBuildTestEnd(line) {
		return StatusRunning, false
	}
	m := buildCountsRe.FindStringSubmatch(line)
	if m == nil {
		// Counters present but unreadable; assume the worst
		return StatusFail, true
	}
	failures := atoi(m[2])
	errors := 0
	if m[3] != "" {
		errors = atoi(m[3])
	}
	if failures+errors > 0 {
		return StatusFail, true
	}
	return StatusPass, true
}

// Classifier answers the configuration-dependent line questions: which lines
// are runner diagnostics rather than test output, which carry the noisy
// flow-runner prefix, and which signal process termination.
// It is stateless and safe to call from anywhere.
type Classifier struct {
	systemPrefixes     []string
	terminationMarkers []string
	noiseRe            *regexp.Regexp
}

// NewClassifier creates a classifier from config
func NewClassifier(cfg *config.DialectConfig) *Classifier {
	var noiseRe *regexp.Regexp
	if cfg.NoisePattern != "" {
		// An invalid pattern just disables noise stripping
		noiseRe, _ = regexp.Compile(cfg.NoisePattern)
	}
	return &Classifier{
		systemPrefixes:     cfg.SystemPrefixes,
		terminationMarkers: cfg.TerminationMarkers,
		noiseRe:            noiseRe,
	}
}

// IsSystem reports whether the line is a runner/system diagnostic
func (c *Classifier) IsSystem(line string) bool {
	s := strings.TrimSpace(line)
	for _, prefix := range c.systemPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// StripNoise removes the known verbose flow-runner prefix, if present
func (c *Classifier) StripNoise(line string) string {
	if c.noiseRe == nil {
		return line
	}
	if loc := c.noiseRe.FindStringIndex(line); loc != nil && loc[0] == 0 {
		return line[loc[1]:]
	}
	return line
}

// IsTermination reports whether a system line signals that the runner
// process finished or was stopped
func (c *Classifier) IsTermination(line string) bool {
	s := strings.ToLower(line)
	for _, marker := range c.terminationMarkers {
		if strings.Contains(s, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// TerminationStatus resolves the terminal status carried by a termination
// line: Pass for a zero exit code, Fail otherwise (including no code at all)
func (c *Classifier) TerminationStatus(line string) Status {
	m := exitCodeRe.FindStringSubmatch(line)
	if m != nil && m[1] == "0" {
		return StatusPass
	}
	return StatusFail
}

func statusFromWord(word string) Status {
	switch strings.ToUpper(word) {
	case "PASS", "PASSED":
		return StatusPass
	case "FAIL", "FAILED":
		return StatusFail
	}
	return StatusRunning
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}
