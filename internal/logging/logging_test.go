package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPreInitLoggerUsesConfiguredHandler(t *testing.T) {
	logger := L("engine")

	var buf bytes.Buffer
	Init("text", "info", &buf)

	logger.Info("script committed", "path", "/opt/Cursor/resources/app/out/main.js")

	out := buf.String()
	if !strings.Contains(out, `msg="script committed"`) {
		t.Fatalf("expected message, got: %s", out)
	}
	if !strings.Contains(out, "component=engine") {
		t.Fatalf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "path=/opt/Cursor/resources/app/out/main.js") {
		t.Fatalf("expected path field, got: %s", out)
	}
}

func TestPreInitLoggerRespectsConfiguredLevel(t *testing.T) {
	logger := L("precheck")

	var buf bytes.Buffer
	Init("text", "warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info log should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn log should be emitted: %s", out)
	}
}

func TestInitJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init("json", "debug", &buf)

	L("resolver").WithGroup("probe").Debug("candidate", "root", "/opt/Cursor")

	out := buf.String()
	if !strings.Contains(out, `"component":"resolver"`) {
		t.Fatalf("expected json component, got: %s", out)
	}
	if !strings.Contains(out, `"probe":{"root":"/opt/Cursor"}`) {
		t.Fatalf("expected grouped attr, got: %s", out)
	}
}

func TestInitSwitchesBetweenFormats(t *testing.T) {
	logger := L("engine")

	var text, js bytes.Buffer
	Init("text", "info", &text)
	logger.Info("first")
	Init("json", "info", &js)
	logger.Info("second")
	Init("text", "info", &text)
	logger.Info("third")

	if !strings.Contains(js.String(), `"msg":"second"`) {
		t.Fatalf("expected json record after switching, got: %s", js.String())
	}
	if !strings.Contains(text.String(), "msg=first") || !strings.Contains(text.String(), "msg=third") {
		t.Fatalf("expected text records around the json one, got: %s", text.String())
	}
	if strings.Contains(text.String(), "second") {
		t.Fatalf("json record leaked into text output: %s", text.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
