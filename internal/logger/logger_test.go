package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"stackvm/internal/logger"

	"github.com/charmbracelet/log"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer

	logger.InitWriter(&buf, false, true)
	log.Debug("hidden step")
	log.Info("hidden info")
	log.Warn("shown warning")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("quiet logger printed debug/info records: %q", out)
	}
	if !strings.Contains(out, "shown warning") || !strings.Contains(out, "STACKVM") {
		t.Errorf("expected prefixed warning, got %q", out)
	}

	buf.Reset()
	logger.InitWriter(&buf, true, true)
	log.Debug("step", "pc", 3)
	if !strings.Contains(buf.String(), "pc=3") {
		t.Errorf("expected debug record with fields, got %q", buf.String())
	}
}
