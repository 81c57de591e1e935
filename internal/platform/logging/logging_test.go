package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestJSONHandlerCarriesStructuredKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, Options{Level: "info", Format: "json"}))
	logger.Debug("hidden")
	logger.Info("campaign submitted", "event", "campaign_submitted", "module", "campaign-promotion/campaign-service", "layer", "application")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line above the level threshold, got %d", len(lines))
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["event"] != "campaign_submitted" || entry["layer"] != "application" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soundtik.log")
	logger, closer := New(Options{Level: "info", Format: "text", File: path, MaxSizeMB: 1})
	logger.Info("worker started", "event", "bootstrap_worker_started")
	if err := closer.Close(); err != nil {
		t.Fatalf("close log file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "event=bootstrap_worker_started") {
		t.Fatalf("expected text log line in file, got %q", string(data))
	}
}
