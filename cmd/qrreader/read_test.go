package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/qrreader/internal/config"
	"github.com/nao1215/qrreader/internal/database"
	"github.com/nao1215/qrreader/internal/qr/qrtest"
)

// newImageServer serves QR fixtures on loopback.
func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()

	images := map[string][]byte{
		"/hello.png": qrtest.PNG(t, "HELLO"),
		"/hello.jpg": qrtest.JPEG(t, "HELLO"),
		"/blank.png": qrtest.BlankPNG(t, 64, 64),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := images[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestNewReadCmd tests the read command creation.
func TestNewReadCmd(t *testing.T) {
	t.Parallel()

	cmd := NewReadCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "read [image-url]..." {
			t.Errorf("unexpected use %q", cmd.Use)
		}
	})

	flags := []struct {
		name      string
		shorthand string
	}{
		{"timeout", "t"},
		{"proxy", "x"},
		{"batch", "b"},
		{"json", "j"},
		{"markdown", "m"},
		{"output", "o"},
		{"process-timeout", ""},
		{"max-bytes", ""},
		{"allow-private", ""},
		{"no-history", ""},
		{"db-dir", ""},
	}
	for _, f := range flags {
		t.Run("has "+f.name+" flag", func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(f.name)
			if flag == nil {
				t.Fatalf("expected %s flag", f.name)
			}
			if flag.Shorthand != f.shorthand {
				t.Errorf("expected shorthand %q, got %q", f.shorthand, flag.Shorthand)
			}
		})
	}
}

// TestBuildReadConfig tests flag precedence over defaults.
func TestBuildReadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := NewRootCmd()
	if err := root.PersistentFlags().Set("config", writeTestConfig(t, dir)); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	cmd, _, err := root.Find([]string{"read"})
	if err != nil {
		t.Fatalf("read command not found: %v", err)
	}
	if err := cmd.ParseFlags([]string{"--timeout", "3s", "--batch", "2", "--no-history", "--json"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := buildReadConfig(cmd, []string{"https://example.com/a.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("expected request timeout 3s, got %s", cfg.RequestTimeout)
	}
	if cfg.ProcessTimeout != config.DefaultProcessTimeout {
		t.Errorf("expected default process timeout, got %s", cfg.ProcessTimeout)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("expected concurrency 2, got %d", cfg.Concurrency)
	}
	if cfg.HistoryEnabled {
		t.Error("expected history to be disabled")
	}
	if !cfg.JSONReport {
		t.Error("expected JSON report")
	}
	if len(cfg.Targets) != 1 {
		t.Errorf("expected one target, got %v", cfg.Targets)
	}
}

// TestRunRead tests the read command end to end against a local server.
func TestRunRead(t *testing.T) {
	t.Parallel()

	srv := newImageServer(t)

	t.Run("successful read prints the text and records history", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		stdout, _, err := runRoot(t, "-c", writeTestConfig(t, dir), "read", "--allow-private", srv.URL+"/hello.png")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "[+] HELLO") {
			t.Errorf("expected decoded text in output, got %q", stdout)
		}

		db, err := database.Open(dir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		records, err := db.ListRecent(context.Background(), 10)
		if err != nil {
			t.Fatalf("ListRecent() failed: %v", err)
		}
		if len(records) != 1 || records[0].URL != srv.URL+"/hello.png" {
			t.Errorf("expected one recorded read, got %+v", records)
		}
	})

	t.Run("batch read writes a JSON report file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		out := filepath.Join(dir, "reports", "qr.json")
		_, _, err := runRoot(t, "-c", writeTestConfig(t, dir), "read",
			"--allow-private", "--no-history", "--json", "-o", out, "--batch", "2",
			srv.URL+"/hello.png", srv.URL+"/hello.jpg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if strings.Count(string(content), `"text": "HELLO"`) != 2 {
			t.Errorf("expected two decoded reads in report, got %s", content)
		}
		if !strings.Contains(string(content), `"succeeded": 2`) {
			t.Errorf("expected summary in report, got %s", content)
		}
		if _, err := os.Stat(filepath.Join(dir, database.FileName)); !os.IsNotExist(err) {
			t.Error("expected no history database with --no-history")
		}
	})

	t.Run("failed reads exit with an error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		stdout, _, err := runRoot(t, "-c", writeTestConfig(t, dir), "read", "--allow-private", "--no-history",
			srv.URL+"/blank.png", srv.URL+"/missing.png")
		if !errors.Is(err, errReadsFailed) {
			t.Fatalf("expected errReadsFailed, got %v", err)
		}
		if !strings.Contains(stdout, "2001") || !strings.Contains(stdout, "1001") {
			t.Errorf("expected both failure codes in output, got %q", stdout)
		}
	})

	t.Run("private addresses are refused by default", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		stdout, _, err := runRoot(t, "-c", writeTestConfig(t, dir), "read", "--no-history", srv.URL+"/hello.png")
		if !errors.Is(err, errReadsFailed) {
			t.Fatalf("expected errReadsFailed, got %v", err)
		}
		if strings.Contains(stdout, "HELLO") {
			t.Error("loopback image must not be read without --allow-private")
		}
	})

	t.Run("no targets is a configuration error", func(t *testing.T) {
		t.Parallel()

		_, _, err := runRoot(t, "-c", writeTestConfig(t, t.TempDir()), "read")
		if !errors.Is(err, config.ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})

	t.Run("conflicting formats are rejected", func(t *testing.T) {
		t.Parallel()

		_, _, err := runRoot(t, "-c", writeTestConfig(t, t.TempDir()), "read", "--json", "--markdown", srv.URL+"/hello.png")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}
