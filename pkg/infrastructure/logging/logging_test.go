package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	testCases := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelWarn},
	}

	for _, tc := range testCases {
		if got := LevelFromString(tc.input); got != tc.expected {
			t.Errorf("LevelFromString(%q): expected %s, got %s", tc.input, tc.expected, got)
		}
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	if got := LevelFromVerbosity(slog.LevelWarn, 0); got != slog.LevelWarn {
		t.Errorf("Expected warn, got %s", got)
	}
	if got := LevelFromVerbosity(slog.LevelWarn, 1); got != slog.LevelInfo {
		t.Errorf("Expected info, got %s", got)
	}
	if got := LevelFromVerbosity(slog.LevelWarn, 5); got != slog.LevelDebug {
		t.Errorf("Expected debug floor, got %s", got)
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "json", slog.LevelInfo).Info("range resolved", "sku", "X")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Expected JSON record, got %q", buf.String())
	}
	if record["sku"] != "X" {
		t.Errorf("Expected sku attribute, got %v", record)
	}

	buf.Reset()
	logger := NewLogger(&buf, "text", slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "endpoint", "simulation-range")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "endpoint=simulation-range") {
		t.Errorf("Unexpected text output: %q", buf.String())
	}
}
