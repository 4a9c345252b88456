package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasdeeiroz/runlens/internal/config"
)

func TestRules(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		double bool
		single bool
	}{
		{"double rule", "==============================", true, false},
		{"single rule", "------------------------------", false, true},
		{"indented double rule", "   ==========   ", true, false},
		{"too short", "=====", false, false},
		{"mixed characters", "====------", false, false},
		{"rule with trailing text", "========== done", false, false},
		{"empty", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.double, IsDoubleRule(tt.line))
			assert.Equal(t, tt.single, IsSingleRule(tt.line))
		})
	}
}

func TestParseStatusRow(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		ok         bool
		wantName   string
		wantStatus Status
	}{
		{"pass", "Login Suite | PASS |", true, "Login Suite", StatusPass},
		{"fail", "Login Suite | FAIL |", true, "Login Suite", StatusFail},
		{"with trailing counters", "Suite | FAIL |\t2 tests", true, "Suite", StatusFail},
		{"lowercase verdict", "Suite | pass |", false, "", StatusRunning},
		{"no verdict cell", "just some | text", false, "", StatusRunning},
		{"plain line", "Login Suite", false, "", StatusRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, status, ok := ParseStatusRow(tt.line)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.wantName, name)
				assert.Equal(t, tt.wantStatus, status)
			}
		})
	}
}

func TestParseSummaryRow(t *testing.T) {
	total, passed, failed, ok := ParseSummaryRow("7 tests, 5 passed, 2 failed")
	require.True(t, ok)
	assert.Equal(t, 7, total)
	assert.Equal(t, 5, passed)
	assert.Equal(t, 2, failed)

	_, _, _, ok = ParseSummaryRow("1 test, 1 passed, 0 failed")
	assert.True(t, ok, "singular form counts too")

	_, _, _, ok = ParseSummaryRow("ran 7 tests")
	assert.False(t, ok)
}

func TestFlowMarkers(t *testing.T) {
	name, ok := ParseFlowSuiteStart("Running on Pixel 7 Emulator")
	require.True(t, ok)
	assert.Equal(t, "Pixel 7 Emulator", name)

	name, ok = ParseFlowSuiteStart("Will run 3 flows")
	require.True(t, ok)
	assert.Equal(t, "3 flows", name)

	_, ok = ParseFlowSuiteStart("Running flow Login")
	assert.False(t, ok, "test markers are not suite markers")

	name, ok = ParseFlowTestStart("Running flow Login")
	require.True(t, ok)
	assert.Equal(t, "Login", name)

	name, status, duration, ok := ParseFlowTestEnd("[Passed] Login (3s)")
	require.True(t, ok)
	assert.Equal(t, "Login", name)
	assert.Equal(t, StatusPass, status)
	assert.Equal(t, "3s", duration)

	name, status, duration, ok = ParseFlowTestEnd("[Failed] Checkout Flow")
	require.True(t, ok)
	assert.Equal(t, "Checkout Flow", name)
	assert.Equal(t, StatusFail, status)
	assert.Empty(t, duration)

	status, ok = ParseFlowSuiteEnd("1/2 Flows Failed in 8s")
	require.True(t, ok)
	assert.Equal(t, StatusFail, status)

	status, ok = ParseFlowSuiteEnd("Flow Passed in 12s")
	require.True(t, ok)
	assert.Equal(t, StatusPass, status)
}

func TestBuildMarkers(t *testing.T) {
	name, ok := ParseBuildTestStart("[INFO] Running com.example.FooTest")
	require.True(t, ok)
	assert.Equal(t, "com.example.FooTest", name)

	status, ok := ParseBuildTestEnd("[INFO] Tests run: 3, Failures: 0, Errors: 0, Skipped: 1 - in com.example.FooTest")
	require.True(t, ok)
	assert.Equal(t, StatusPass, status)

	status, ok = ParseBuildTestEnd("Tests run: 3, Failures: 1, Errors: 0")
	require.True(t, ok)
	assert.Equal(t, StatusFail, status)

	status, ok = ParseBuildTestEnd("Tests run: 3, Failures: 0, Errors: 2")
	require.True(t, ok)
	assert.Equal(t, StatusFail, status, "errors fail the class even with zero failures")

	_, ok = ParseBuildTestEnd("[INFO] BUILD SUCCESS")
	assert.False(t, ok)
}

func TestClassifierSystemAndNoise(t *testing.T) {
	cfg := config.Default()
	c := NewClassifier(&cfg.Dialect)

	assert.True(t, c.IsSystem("[System] Runner started"))
	assert.True(t, c.IsSystem("STDERR: boom"))
	assert.True(t, c.IsSystem("Output:  /tmp/output.xml"))
	assert.False(t, c.IsSystem("Login Test"))

	assert.Equal(t, "Tap on button", c.StripNoise("[12/40] Tap on button"))
	assert.Equal(t, "no counter here", c.StripNoise("no counter here"))
	assert.Equal(t, " [1/2] not at start", c.StripNoise(" [1/2] not at start"),
		"prefix must anchor at column zero")
}

func TestClassifierTermination(t *testing.T) {
	cfg := config.Default()
	c := NewClassifier(&cfg.Dialect)

	tests := []struct {
		line        string
		termination bool
		status      Status
	}{
		{"[System] Finished: exit code: 0", true, StatusPass},
		{"[System] Finished: exit code: 1", true, StatusFail},
		{"[System] Finished: Exit Code: 137", true, StatusFail},
		{"[System] stopped by user", true, StatusFail},
		{"[System] Runner started", false, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.termination, c.IsTermination(tt.line))
			if tt.termination {
				assert.Equal(t, tt.status, c.TerminationStatus(tt.line))
			}
		})
	}
}
