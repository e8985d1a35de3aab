package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/neowatch/pkg/neows"
)

const feedBody = `{"element_count": 1, "near_earth_objects": {"2024-01-10": [
  {"id": "1", "name": "(2024 AB)", "close_approach_data": [{"close_approach_date_full": "2024-Jan-10 13:45",
    "relative_velocity": {"kilometers_per_second": "12.3456"}, "miss_distance": {"astronomical": "0.001"}}]}
]}}`

func setEnv(t *testing.T, baseURL string) {
	t.Helper()
	t.Setenv("NEO_BASE_URL", baseURL)
	t.Setenv("NEO_API_KEY", "test-key")
	t.Setenv("PREFS_TYPE", "bbolt")
	t.Setenv("PREFS_PATH", filepath.Join(t.TempDir(), "prefs.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PUBLISHERS_FILE", "")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRefreshPrintsHTMLRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feedBody))
	}))
	defer srv.Close()
	setEnv(t, srv.URL)

	stdout, stderr, err := execute(t, "refresh", "--format", "html")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(stdout))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	cells := doc.Find("tbody tr td")
	if cells.Length() != 4 || cells.Eq(2).Text() != "149,598" {
		t.Fatalf("unexpected html output:\n%s", stdout)
	}
	if !strings.Contains(stderr, "OK: 1 items, max 0.05 AU") {
		t.Fatalf("status line missing from stderr: %q", stderr)
	}
}

func TestDiagReportsRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	setEnv(t, srv.URL)

	stdout, stderr, err := execute(t, "diag", "--format", "text")
	if !errors.Is(err, neows.ErrRateLimited) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	var reported reportedError
	if !errors.As(err, &reported) {
		t.Fatalf("failure should be marked as already reported")
	}
	if stdout != "" {
		t.Fatalf("failed fetch must not render a table, got %q", stdout)
	}
	if !strings.Contains(stderr, "Diagnostic: "+neows.ErrRateLimited.Error()) || !strings.Contains(stderr, "Diagnostic failed") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestThresholdSetAndGet(t *testing.T) {
	setEnv(t, "http://127.0.0.1:1")

	stdout, _, err := execute(t, "threshold", "set", "0.02")
	if err != nil || strings.TrimSpace(stdout) != "max 0.02 AU" {
		t.Fatalf("threshold set = %q, %v", stdout, err)
	}
	stdout, _, err = execute(t, "threshold")
	if err != nil || strings.TrimSpace(stdout) != "0.02" {
		t.Fatalf("threshold = %q, %v", stdout, err)
	}
	stdout, _, err = execute(t, "threshold", "set", "--", "-4")
	if err != nil || strings.TrimSpace(stdout) != "max 0.05 AU" {
		t.Fatalf("invalid threshold should store the default, got %q, %v", stdout, err)
	}
}

func TestUnknownFormat(t *testing.T) {
	setEnv(t, "http://127.0.0.1:1")
	if _, _, err := execute(t, "refresh", "--format", "pdf"); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}

func TestDebugLogOmitsAPIKey(t *testing.T) {
	setEnv(t, "http://127.0.0.1:1")
	logPath := filepath.Join(t.TempDir(), "neowatch.log")
	t.Setenv("LOG_FILE", logPath)
	t.Setenv("LOG_LEVEL", "debug")

	if _, _, err := execute(t, "threshold"); err != nil {
		t.Fatalf("threshold: %v", err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "neowatch starting") {
		t.Fatalf("startup line missing from log:\n%s", data)
	}
	if strings.Contains(string(data), "test-key") {
		t.Fatalf("api key leaked into the log:\n%s", data)
	}
}
