package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func captureLogger(level Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(Config{Output: buf, MinLevel: level}), buf
}

func decodeEntry(t *testing.T, line string) Entry {
	t.Helper()
	var entry Entry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("failed to decode log entry %q: %v", line, err)
	}
	return entry
}

func TestLogLevels(t *testing.T) {
	log, buf := captureLogger(LevelDebug)

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d", len(lines))
	}

	levels := []Level{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i, line := range lines {
		entry := decodeEntry(t, line)
		if entry.Level != levels[i] {
			t.Errorf("line %d: expected level %s, got %s", i, levels[i], entry.Level)
		}
	}
}

func TestMinLevelFiltering(t *testing.T) {
	log, buf := captureLogger(LevelWarn)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(lines))
	}

	entry := decodeEntry(t, lines[0])
	if entry.Message != "visible" {
		t.Errorf("expected message 'visible', got %q", entry.Message)
	}
}

func TestErrorIncludesErrorField(t *testing.T) {
	log, buf := captureLogger(LevelInfo)

	log.Error("probe failed", errors.New("connection refused"))

	entry := decodeEntry(t, strings.TrimSpace(buf.String()))
	if entry.Error != "connection refused" {
		t.Errorf("expected error field, got %q", entry.Error)
	}
}

func TestWithFields(t *testing.T) {
	log, buf := captureLogger(LevelInfo)

	log.WithFields(map[string]interface{}{
		"source":  "iptv-org",
		"channel": "ch_abc123",
	}).Info("channel ingested")

	entry := decodeEntry(t, strings.TrimSpace(buf.String()))
	if entry.Context["source"] != "iptv-org" {
		t.Errorf("expected source field, got %v", entry.Context["source"])
	}
	if entry.Context["channel"] != "ch_abc123" {
		t.Errorf("expected channel field, got %v", entry.Context["channel"])
	}
}

func TestContextValues(t *testing.T) {
	log, buf := captureLogger(LevelInfo)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithSource(ctx, "free-tv")

	log.InfoContext(ctx, "handling request")

	entry := decodeEntry(t, strings.TrimSpace(buf.String()))
	if entry.Context["request_id"] != "req-123" {
		t.Errorf("expected request_id, got %v", entry.Context["request_id"])
	}
	if entry.Context["source"] != "free-tv" {
		t.Errorf("expected source, got %v", entry.Context["source"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestSingletonInitialization(t *testing.T) {
	InitializeLoggers("debug", "error")
	defer func() {
		SetAppLogger(nil)
		SetDatabaseLogger(nil)
	}()

	if AppLogger().minLevel != LevelDebug {
		t.Errorf("expected app logger at debug, got %s", AppLogger().minLevel)
	}
	if DatabaseLogger().minLevel != LevelError {
		t.Errorf("expected database logger at error, got %s", DatabaseLogger().minLevel)
	}
}
