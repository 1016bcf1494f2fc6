package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestCurrentBuildInfo tests that every field has a value.
func TestCurrentBuildInfo(t *testing.T) {
	t.Parallel()

	info := currentBuildInfo()
	if info.Version == "" || info.Commit == "" || info.Date == "" || info.Go == "" {
		t.Errorf("expected every field to be set, got %+v", info)
	}
	if getVersion() != info.Version {
		t.Errorf("getVersion() = %q, expected %q", getVersion(), info.Version)
	}
}

// TestShortRevision tests revision trimming.
func TestShortRevision(t *testing.T) {
	t.Parallel()

	if got := shortRevision("0123456789abcdef"); got != "0123456" {
		t.Errorf("expected 0123456, got %q", got)
	}
	if got := shortRevision("abc"); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}

// TestNewVersionCmd tests the version command output.
func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"qrreader version", "commit:", "built:", "go:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
}
