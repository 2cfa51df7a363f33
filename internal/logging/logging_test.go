package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false, true)
	log.Debug("hidden")
	log.Info("shown", "request_id", "abc")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "request_id=abc") {
		t.Fatalf("unexpected output: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no colour codes: %q", out)
	}

	buf.Reset()
	New(&buf, true, true).Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug line should be written when debug is on")
	}
}
