package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestLogger_WritesJSONLines(t *testing.T) {
	var buffer bytes.Buffer
	log := NewLogger(&buffer, false, false).With("employee", "42")

	log.Error("recalculation failed", errors.New("boom"))

	var line map[string]interface{}
	if err := json.Unmarshal(buffer.Bytes(), &line); err != nil {
		t.Fatalf("invalid json line %q: %v", buffer.String(), err)
	}

	if line["level"] != "error" || line["message"] != "recalculation failed" || line["error"] != "boom" || line["employee"] != "42" {
		t.Errorf("unexpected line %v", line)
	}
}

func TestLogger_DebugNeedsDebugLevel(t *testing.T) {
	var buffer bytes.Buffer
	NewLogger(&buffer, false, false).Debug("hidden")
	if buffer.Len() != 0 {
		t.Errorf("expected no output, got %q", buffer.String())
	}

	NewLogger(&buffer, false, true).Debug("shown")
	if buffer.Len() == 0 {
		t.Error("expected debug output")
	}
}

func TestLogger_ZeroValueIsSilent(t *testing.T) {
	var log Logger
	log.Info("nothing")
	log.Error("nothing", errors.New("nothing"))
}
