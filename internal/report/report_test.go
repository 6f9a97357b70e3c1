package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	c := &Console{Out: &buf}

	c.Report(500, 0.123456789)
	c.Report(1000, 0.01)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "epoch 500 | max_change=0.123457" {
		t.Errorf("unexpected line: %q", lines[0])
	}
}

func TestLogFields(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	NewLog(logger).Report(1500, 0.005)

	out := buf.String()
	for _, want := range []string{`"epoch":1500`, `"max_change":0.005`, "relaxation progress"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestHistoryAccumulates(t *testing.T) {
	h := &History{}
	h.Report(500, 0.5)
	h.Report(1000, 0.05)
	h.Report(1500, 0.005)

	if h.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", h.Len())
	}
	if h.Epochs[2] != 1500 || h.Changes[2] != 0.005 {
		t.Errorf("unexpected last sample: (%d, %g)", h.Epochs[2], h.Changes[2])
	}
}
