package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// ============================================================================
// Error Tests
// ============================================================================

func TestConfigError(t *testing.T) {
	err := NewConfigError("cache.max_size", "must be positive")
	if !strings.Contains(err.Error(), "cache.max_size") {
		t.Errorf("expected field in message, got %q", err.Error())
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewCommandError("run", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be discoverable")
	}
	if !strings.Contains(err.Error(), "run") {
		t.Errorf("expected command in message, got %q", err.Error())
	}
}

// ============================================================================
// Formatter Tests
// ============================================================================

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewFormatter(FormatJSON)

	if err := formatter.FormatTo(&buf, map[string]int{"entries": 3}); err != nil {
		t.Fatalf("format failed: %v", err)
	}

	var decoded map[string]int
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected valid JSON, got %q: %v", buf.String(), err)
	}
	if decoded["entries"] != 3 {
		t.Errorf("unexpected payload %v", decoded)
	}
}

func TestTextFormatter(t *testing.T) {
	formatter := NewFormatter(FormatText)

	out, err := formatter.Format("hello")
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if string(out) != "hello\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNewFormatter_DefaultsToText(t *testing.T) {
	if _, ok := NewFormatter("bogus").(*TextFormatter); !ok {
		t.Error("expected text formatter for unknown format")
	}
}
