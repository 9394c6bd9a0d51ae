package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer, level LogLevel, format LogFormat, component string) *Logger {
	return New(Config{
		Level:     level,
		Format:    format,
		Output:    buf,
		Component: component,
	})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for i, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Line %d is not valid JSON: %v (%s)", i+1, err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, DEBUG, JSONFormat, "test")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", nil)

	entries := decodeLines(t, &buf)
	if len(entries) != 4 {
		t.Fatalf("Expected 4 log lines, got %d", len(entries))
	}

	want := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	for i, entry := range entries {
		if entry.Level != want[i] {
			t.Errorf("Line %d: expected level %s, got %s", i+1, want[i], entry.Level)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, WARN, JSONFormat, "test")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", nil)

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Errorf("Expected 2 log lines with WARN level, got %d", len(entries))
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, ERROR, JSONFormat, "test")

	logger.Info("hidden")
	logger.SetLevel(INFO)
	logger.Info("visible")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0].Message != "visible" {
		t.Errorf("Expected only the message logged after SetLevel, got %+v", entries)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, INFO, JSONFormat, "test-component")

	logger.Info("test message", map[string]interface{}{
		"key1": "value1",
		"key2": 42,
	})

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	if entry.Level != "INFO" {
		t.Errorf("Expected level INFO, got %s", entry.Level)
	}
	if entry.Message != "test message" {
		t.Errorf("Expected message 'test message', got %s", entry.Message)
	}
	if entry.Component != "test-component" {
		t.Errorf("Expected component 'test-component', got %s", entry.Component)
	}
	if entry.Fields["key1"] != "value1" {
		t.Errorf("Expected field key1='value1', got %v", entry.Fields["key1"])
	}
	if entry.Fields["key2"] != float64(42) {
		t.Errorf("Expected field key2=42, got %v", entry.Fields["key2"])
	}
	if entry.Timestamp == "" {
		t.Error("Expected timestamp to be set")
	}
}

func TestCallerInformation(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, INFO, JSONFormat, "")

	logger.Info("where am i")

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}
	if !strings.HasSuffix(entry.File, "logger_test.go") {
		t.Errorf("Expected caller file logger_test.go, got %s", entry.File)
	}
	if !strings.Contains(entry.Function, "TestCallerInformation") {
		t.Errorf("Expected caller function TestCallerInformation, got %s", entry.Function)
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, INFO, TextFormat, "test-component")

	logger.Info("test message", map[string]interface{}{
		"key1": "value1",
		"key2": 42,
	})

	output := buf.String()
	for _, want := range []string{"INFO", "[test-component]", "test message", "key1=value1", "key2=42"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got %q", want, output)
		}
	}
	if strings.Contains(output, "logger_test.go") {
		t.Errorf("Text output should not include caller file, got %q", output)
	}
}

func TestSetFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, INFO, JSONFormat, "fmt")

	logger.SetFormat(TextFormat)
	logger.Info("plain line")

	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("Expected text output after SetFormat, got %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newTestLogger(&buf, INFO, JSONFormat, "base")

	componentLogger := baseLogger.WithComponent("specific-component")
	componentLogger.Info("test message")

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}
	if entry.Component != "specific-component" {
		t.Errorf("Expected component 'specific-component', got %s", entry.Component)
	}
}

func TestErrorLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, ERROR, JSONFormat, "")

	testErr := &testError{msg: "test error"}
	logger.Error("operation failed", testErr, map[string]interface{}{
		"operation": "test_op",
	})

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}
	if entry.Error != "test error" {
		t.Errorf("Expected error 'test error', got %s", entry.Error)
	}
	if entry.Fields["operation"] != "test_op" {
		t.Errorf("Expected operation field 'test_op', got %v", entry.Fields["operation"])
	}
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer

	originalLogger := GetGlobalLogger()
	defer SetGlobalLogger(originalLogger)

	SetGlobalLogger(newTestLogger(&buf, INFO, JSONFormat, "global-test"))

	Info("global info message")
	Warn("global warn message")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log lines, got %d", len(entries))
	}
	if entries[0].Level != "INFO" || entries[0].Message != "global info message" {
		t.Errorf("First line incorrect: level=%s, message=%s", entries[0].Level, entries[0].Message)
	}
	if entries[1].Level != "WARN" || entries[1].Message != "global warn message" {
		t.Errorf("Second line incorrect: level=%s, message=%s", entries[1].Level, entries[1].Message)
	}
	for i, entry := range entries {
		if !strings.Contains(entry.Function, "TestGlobalLogger") {
			t.Errorf("Line %d: expected global caller TestGlobalLogger, got %s", i, entry.Function)
		}
	}
}

func TestComponentFromGlobal(t *testing.T) {
	var buf bytes.Buffer

	originalLogger := GetGlobalLogger()
	defer SetGlobalLogger(originalLogger)
	SetGlobalLogger(newTestLogger(&buf, INFO, JSONFormat, ""))

	Component("fetcher").Info("loaded")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0].Component != "fetcher" {
		t.Errorf("Expected one entry from component fetcher, got %+v", entries)
	}
}

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer

	originalLogger := GetGlobalLogger()
	defer SetGlobalLogger(originalLogger)
	SetGlobalLogger(newTestLogger(&buf, INFO, JSONFormat, ""))

	Configure("error", "")
	Warn("dropped")
	Error("kept", nil)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0].Message != "kept" {
		t.Errorf("Expected only the error entry, got %+v", entries)
	}

	Configure("bogus", "bogus")
	if GetGlobalLogger().level != ERROR {
		t.Errorf("Unknown level should leave setting unchanged, got %v", GetGlobalLogger().level)
	}
}

func TestFormattedLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, INFO, JSONFormat, "")

	logger.Infof("User %s logged in with ID %d", "john", 123)

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	expected := "User john logged in with ID 123"
	if entry.Message != expected {
		t.Errorf("Expected message '%s', got '%s'", expected, entry.Message)
	}
}

func TestParseSettings(t *testing.T) {
	levels := map[string]LogLevel{
		"DEBUG":   DEBUG,
		"debug":   DEBUG,
		"info":    INFO,
		"warning": WARN,
		"Error":   ERROR,
		"fatal":   FATAL,
		"verbose": -1,
	}
	for in, want := range levels {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}

	formats := map[string]LogFormat{
		"text":    TextFormat,
		"console": TextFormat,
		"JSON":    JSONFormat,
		"xml":     -1,
	}
	for in, want := range formats {
		if got := parseLogFormat(in); got != want {
			t.Errorf("parseLogFormat(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{FATAL, "FATAL"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, test := range tests {
		if test.level.String() != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, test.level.String())
		}
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func BenchmarkJSONLogging(b *testing.B) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, INFO, JSONFormat, "")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", map[string]interface{}{
			"iteration": i,
			"benchmark": true,
		})
	}
}

func BenchmarkTextLogging(b *testing.B) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, INFO, TextFormat, "")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", map[string]interface{}{
			"iteration": i,
			"benchmark": true,
		})
	}
}

func BenchmarkLevelFiltering(b *testing.B) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, WARN, JSONFormat, "")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug("debug message that should be filtered")
	}
}
