package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/nao1215/qrreader/internal/config"
)

// TestNewServeCmd tests the serve command creation.
func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()
	for _, name := range []string{"listen", "log-json", "rate-limit", "rate-burst", "timeout", "proxy", "db-dir", "no-history"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
	if flag := cmd.Flags().Lookup("listen"); flag != nil && flag.DefValue != config.DefaultListenAddress {
		t.Errorf("expected default %q, got %q", config.DefaultListenAddress, flag.DefValue)
	}
}

// newServeTestCmd returns the serve command attached to a root whose config
// flag points at a test config file, with args parsed.
func newServeTestCmd(t *testing.T, dir string, args ...string) *cobra.Command {
	t.Helper()

	root := NewRootCmd()
	if err := root.PersistentFlags().Set("config", writeTestConfig(t, dir)); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	cmd, _, err := root.Find([]string{"serve"})
	if err != nil {
		t.Fatalf("serve command not found: %v", err)
	}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return cmd
}

// TestBuildServeConfig tests flag handling of the serve command.
func TestBuildServeConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags override defaults", func(t *testing.T) {
		t.Parallel()

		cmd := newServeTestCmd(t, t.TempDir(), "--listen", "127.0.0.1:9999", "--log-json", "--rate-limit", "0")
		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ListenAddress != "127.0.0.1:9999" {
			t.Errorf("unexpected listen address %q", cfg.ListenAddress)
		}
		if !cfg.LogJSON {
			t.Error("expected JSON logs")
		}
		if cfg.RateLimit != 0 {
			t.Errorf("expected rate limit disabled, got %v", cfg.RateLimit)
		}
		if cfg.RateBurst != config.DefaultRateBurst {
			t.Errorf("expected default burst, got %d", cfg.RateBurst)
		}
	})

	t.Run("empty listen address is rejected", func(t *testing.T) {
		t.Parallel()

		cmd := newServeTestCmd(t, t.TempDir(), "--listen", "")
		cfg, err := buildServeConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.ValidateServe(); !errors.Is(err, config.ErrEmptyListenAddress) {
			t.Errorf("expected ErrEmptyListenAddress, got %v", err)
		}
	})
}

// TestNewServeLogger tests log format selection.
func TestNewServeLogger(t *testing.T) {
	t.Parallel()

	for _, jsonLogs := range []bool{false, true} {
		var buf bytes.Buffer
		cmd := NewServeCmd()
		cmd.SetErr(&buf)

		cfg := config.NewConfig()
		cfg.LogJSON = jsonLogs
		newServeLogger(cmd, cfg).Info("hello", "auth_token", "secret")

		out := buf.String()
		if jsonLogs != strings.HasPrefix(out, "{") {
			t.Errorf("json=%v: unexpected output %q", jsonLogs, out)
		}
		if strings.Contains(out, "secret") {
			t.Errorf("token leaked into log output: %q", out)
		}
	}
}

// TestNewServer tests that the wired server answers requests.
func TestNewServer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.DBDir = dir
	cfg.AuthToken = "secret"

	srv, closeFn, err := newServer(cfg, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		if err := closeFn(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	}()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/errors", http.StatusOK},
		{http.MethodGet, "/history", http.StatusUnauthorized},
		{http.MethodPost, "/", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.want, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected history with token to succeed, got %d", rec.Code)
	}
}

// TestNewServerDefaultsRefuseHistory tests that the default configuration
// keeps history private when no token is set.
func TestNewServerDefaultsRefuseHistory(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.DBDir = t.TempDir()

	srv, closeFn, err := newServer(cfg, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		if err := closeFn(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	}()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rec.Code)
	}
}
