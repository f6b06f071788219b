package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func parseEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return logEntry
}

func TestHubLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	hl := NewHubLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	hl.Debug("test message", "key1", "value1", "key2", 42)

	logEntry := parseEntry(t, &buf)
	if logEntry["level"] != "debug" {
		t.Errorf("expected level 'debug', got %v", logEntry["level"])
	}
	if logEntry["message"] != "test message" {
		t.Errorf("expected message 'test message', got %v", logEntry["message"])
	}
	if logEntry["key1"] != "value1" {
		t.Errorf("expected key1='value1', got %v", logEntry["key1"])
	}
	if logEntry["key2"] != float64(42) { // JSON numbers are float64
		t.Errorf("expected key2=42, got %v", logEntry["key2"])
	}
}

func TestHubLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	hl := NewHubLogger(zerolog.New(&buf))

	hl.Info("info message", "status", "ok")

	logEntry := parseEntry(t, &buf)
	if logEntry["level"] != "info" {
		t.Errorf("expected level 'info', got %v", logEntry["level"])
	}
	if logEntry["status"] != "ok" {
		t.Errorf("expected status='ok', got %v", logEntry["status"])
	}
}

func TestHubLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	hl := NewHubLogger(zerolog.New(&buf))

	hl.Error("error occurred", "code", 500, "reason", "internal")

	logEntry := parseEntry(t, &buf)
	if logEntry["level"] != "error" {
		t.Errorf("expected level 'error', got %v", logEntry["level"])
	}
	if logEntry["code"] != float64(500) {
		t.Errorf("expected code=500, got %v", logEntry["code"])
	}
	if logEntry["reason"] != "internal" {
		t.Errorf("expected reason='internal', got %v", logEntry["reason"])
	}
}

func TestHubLogger_OddKeyValuesIgnored(t *testing.T) {
	var buf bytes.Buffer
	hl := NewHubLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	hl.Debug("simple message", "dangling")

	logEntry := parseEntry(t, &buf)
	if logEntry["message"] != "simple message" {
		t.Errorf("expected message 'simple message', got %v", logEntry["message"])
	}
	if _, ok := logEntry["dangling"]; ok {
		t.Error("expected dangling key to be dropped")
	}
}

func TestHubLogger_ImplementsInterface(t *testing.T) {
	hl := NewHubLogger(zerolog.Nop())

	// These calls would fail to compile if the interface isn't satisfied
	var _ interface {
		Debug(msg string, keysAndValues ...any)
		Info(msg string, keysAndValues ...any)
		Error(msg string, keysAndValues ...any)
	} = hl
}
