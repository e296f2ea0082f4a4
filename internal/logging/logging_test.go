package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		configLevel LogLevel
		logLevel    LogLevel
		expectLog   bool
	}{
		{InfoLevel, DebugLevel, false},
		{InfoLevel, InfoLevel, true},
		{InfoLevel, WarnLevel, true},
		{WarnLevel, InfoLevel, false},
		{DebugLevel, DebugLevel, true},
		{ErrorLevel, WarnLevel, false},
		{ErrorLevel, ErrorLevel, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.configLevel)+"/"+string(tt.logLevel), func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(Config{Format: HumanFormat, Level: tt.configLevel, Output: &buf})

			logger.log(tt.logLevel, "test message", nil)

			got := buf.Len() > 0
			if got != tt.expectLog {
				t.Errorf("expectLog=%v, got output %q", tt.expectLog, buf.String())
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: &buf})

	logger.Info("endpoint detected", map[string]interface{}{
		"method": "POST",
		"path":   "/api/x",
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["message"] != "endpoint detected" {
		t.Errorf("message = %v", entry["message"])
	}
	fields, ok := entry["fields"].(map[string]interface{})
	if !ok {
		t.Fatalf("fields missing: %v", entry)
	}
	if fields["method"] != "POST" {
		t.Errorf("fields.method = %v", fields["method"])
	}
}

func TestHumanFormatStableFieldOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: InfoLevel, Output: &buf})

	logger.Info("run complete", map[string]interface{}{
		"files":     3,
		"endpoints": 2,
		"duration":  "12ms",
	})

	out := buf.String()
	// Keys must appear alphabetically regardless of map iteration order
	di := strings.Index(out, "duration=")
	ei := strings.Index(out, "endpoints=")
	fi := strings.Index(out, "files=")
	if di < 0 || ei < 0 || fi < 0 {
		t.Fatalf("missing fields in output: %q", out)
	}
	if !(di < ei && ei < fi) {
		t.Errorf("fields not in stable order: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"verbose", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
