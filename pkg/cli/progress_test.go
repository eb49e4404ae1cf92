package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestProgressReporter(t *testing.T) {
	buf := &bytes.Buffer{}
	reporter := NewProgressReporter(buf)

	reporter.Start(10)
	reporter.Update(5)
	reporter.Finish()

	output := buf.String()
	if !strings.Contains(output, "50.0%") {
		t.Errorf("output should contain 50.0%% midpoint, got %q", output)
	}
	if !strings.Contains(output, "100.0%") {
		t.Errorf("output should contain 100.0%% after Finish, got %q", output)
	}
	if !strings.Contains(output, "(10/10)") {
		t.Errorf("output should contain final count, got %q", output)
	}
}

func TestProgressReporterZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	reporter := NewProgressReporter(buf)

	reporter.Start(0)
	reporter.Update(0)
	reporter.Finish()

	// Zero total renders no bar; only Finish's newline appears.
	if strings.Contains(buf.String(), "%") {
		t.Errorf("zero-total progress should render no bar, got %q", buf.String())
	}
}

func TestProgressReporterError(t *testing.T) {
	buf := &bytes.Buffer{}
	reporter := NewProgressReporter(buf)

	reporter.Start(5)
	reporter.Error(errors.New("archive unreadable"))

	if !strings.Contains(buf.String(), "archive unreadable") {
		t.Errorf("output should contain the error, got %q", buf.String())
	}
}

func TestNewProgressReporterNilWriter(t *testing.T) {
	reporter := NewProgressReporter(nil)
	if reporter == nil {
		t.Fatal("NewProgressReporter(nil) returned nil")
	}
}
