package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/cursor-tools/cursor-patch/internal/logging"
)

func TestLogConfigWarningsUsesConfiguredHandler(t *testing.T) {
	var buf bytes.Buffer
	logging.Init("json", "info", &buf)
	t.Cleanup(func() { logging.Init("text", "info", nil) })

	logConfigWarnings([]error{errors.New("log_max_backups 100 exceeds maximum 20, clamping")})

	out := buf.String()
	if !strings.Contains(out, `"component":"config"`) {
		t.Fatalf("expected config component in json output, got: %s", out)
	}
	if !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, "exceeds maximum 20") {
		t.Fatalf("expected warning record, got: %s", out)
	}
}

func TestLogConfigWarningsRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logging.Init("text", "error", &buf)
	t.Cleanup(func() { logging.Init("text", "info", nil) })

	logConfigWarnings([]error{errors.New("log_level \"loud\" is not valid, using info")})

	if buf.Len() != 0 {
		t.Fatalf("warn records should be filtered at error level, got: %s", buf.String())
	}
}

func TestCapitalize(t *testing.T) {
	if got := capitalize("patched successfully"); got != "Patched successfully" {
		t.Fatalf("capitalize = %q", got)
	}
	if got := capitalize(""); got != "" {
		t.Fatalf("capitalize empty = %q", got)
	}
}
