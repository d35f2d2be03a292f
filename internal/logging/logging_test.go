package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWriter_FormatsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "json", "warn")
	l.Info("hidden")
	l.Warn("shown", "level_number", 2)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"level_number":2`) {
		t.Errorf("unexpected json output: %s", out)
	}
}

func TestParseLevel_DefaultsToInfo(t *testing.T) {
	if ParseLevel("nonsense") != slog.LevelInfo {
		t.Errorf("unknown level should map to info")
	}
	if ParseLevel("DEBUG") != slog.LevelDebug {
		t.Errorf("level names are case-insensitive")
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := NewWriter(&bytes.Buffer{}, "text", "info")
	ctx := NewContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Errorf("logger not recovered from context")
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Errorf("expected default logger for empty context")
	}
}
