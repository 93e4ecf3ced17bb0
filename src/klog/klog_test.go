package klog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	lg := &Logger{Out: &buf, Level: Warning}

	lg.Debugf("hidden %d", 1)
	lg.Infof("also hidden")
	lg.Warnf("shown %s", "now")
	lg.Errorf("shown too")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug/info to be filtered out, got %q", out)
	}
	if !strings.Contains(out, "warning: shown now") {
		t.Fatalf("missing warning line in %q", out)
	}
	if !strings.Contains(out, "error: shown too") {
		t.Fatalf("missing error line in %q", out)
	}
}

func TestDisabledSuppressesEverything(t *testing.T) {
	var buf bytes.Buffer
	lg := &Logger{Out: &buf, Level: Disabled}
	lg.Errorf("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestNilWriterIsSafe(t *testing.T) {
	lg := &Logger{Level: Debug}
	lg.Infof("no writer configured")
}
