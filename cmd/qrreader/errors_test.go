package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/qrreader/internal/config"
	"github.com/nao1215/qrreader/internal/outcome"
)

// TestRunErrorsCmd tests the error catalog output in every format.
func TestRunErrorsCmd(t *testing.T) {
	t.Parallel()

	t.Run("text output lists every code", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runRoot(t, "errors")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, e := range outcome.Catalog() {
			if !strings.Contains(stdout, e.Description) {
				t.Errorf("expected %q in output, got %q", e.Description, stdout)
			}
		}
	})

	t.Run("json output decodes to the catalog", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runRoot(t, "errors", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var entries []outcome.Entry
		if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(entries) != len(outcome.Catalog()) {
			t.Errorf("expected %d entries, got %d", len(outcome.Catalog()), len(entries))
		}
		if entries[0].Code != 0 || entries[len(entries)-1].Code != 2001 {
			t.Errorf("unexpected ordering: %+v", entries)
		}
	})

	t.Run("markdown output has a heading", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := runRoot(t, "errors", "--markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "# Error Codes") {
			t.Errorf("expected markdown heading, got %q", stdout)
		}
	})

	t.Run("conflicting formats are rejected", func(t *testing.T) {
		t.Parallel()

		_, _, err := runRoot(t, "errors", "--json", "--markdown")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}
