package spinner

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestSpinnerRendersAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := Start(&buf, "evaluating")

	time.Sleep(250 * time.Millisecond)
	s.Update("still evaluating")
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "evaluating") {
		t.Errorf("spinner output %q should contain the message", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("spinner output should end with a line clear, got %q", out[len(out)-10:])
	}

	// Stop is idempotent.
	s.Stop()
}
