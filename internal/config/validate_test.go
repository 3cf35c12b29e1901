package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestDefaultIsValid(t *testing.T) {
	result := Default().ValidateTiered()
	if result.HasFatals() || len(result.Warnings) > 0 {
		t.Fatalf("default config should validate cleanly: %+v", result)
	}
}

func TestValidateTieredInvalidMinVersionIsFatal(t *testing.T) {
	cfg := Default()
	cfg.MinVersion = "0.45"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("malformed min_version should be fatal")
	}
	if !strings.Contains(result.Fatals[0].Error(), "min version") {
		t.Fatalf("unexpected error: %v", result.Fatals[0])
	}
}

func TestValidateTieredInvertedBoundsIsFatal(t *testing.T) {
	cfg := Default()
	cfg.MinVersion = "1.0.0"
	cfg.MaxVersion = "0.9.9"
	if !cfg.ValidateTiered().HasFatals() {
		t.Fatal("min above max should be fatal")
	}
}

func TestValidateTieredBadLogFormatIsFatal(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	if !cfg.ValidateTiered().HasFatals() {
		t.Fatal("unknown log format should be fatal")
	}
}

func TestValidateTieredClampingIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LogMaxSizeMB = 0
	cfg.LogMaxBackups = 100
	cfg.LogLevel = "loud"

	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("clamped values should be warnings, not fatals: %v", result.Fatals)
	}
	if len(result.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d: %v", len(result.Warnings), result.Warnings)
	}
	if cfg.LogMaxSizeMB != 1 || cfg.LogMaxBackups != 20 || cfg.LogLevel != "info" {
		t.Fatalf("values not clamped: %+v", cfg)
	}
}

func TestValidateTieredReturnsWarningsWithoutLogging(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg := Default()
	cfg.LogMaxSizeMB = 9999
	result := cfg.ValidateTiered()

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
	if buf.Len() != 0 {
		t.Fatalf("validation should leave logging to the caller, got: %s", buf.String())
	}
}

func TestLoadFromFileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor-patch.yaml")
	err := os.WriteFile(path, []byte("min_version: 0.46.0\nmax_version: 0.50.0\nlog_level: debug\nhistory: false\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("CURSOR_PATCH_MAX_VERSION", "0.49.0")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "", "")
	flags.String("app-dir", "", "")
	flags.Bool("no-lock", false, "")
	if err := flags.Parse([]string{"--app-dir", "/tmp/cursor", "--no-lock"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.MinVersion != "0.46.0" {
		t.Errorf("min_version = %q, want file value", cfg.MinVersion)
	}
	if cfg.MaxVersion != "0.49.0" {
		t.Errorf("max_version = %q, want env override", cfg.MaxVersion)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, unchanged flag must not override file", cfg.LogLevel)
	}
	if cfg.InstallDir != "/tmp/cursor" {
		t.Errorf("install_dir = %q, want flag value", cfg.InstallDir)
	}
	if cfg.Lock {
		t.Error("--no-lock should disable the lock")
	}
	if cfg.History {
		t.Error("history should be disabled by the file")
	}
	if cfg.LogMaxBackups != 3 {
		t.Errorf("log_max_backups = %d, want default 3", cfg.LogMaxBackups)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Fatal("explicit missing config file should fail")
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cursor-patch.yaml")
	cfg := Default()
	cfg.MaxVersion = "0.48.0"
	if err := cfg.WriteFile(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.MaxVersion != "0.48.0" || loaded.MinVersion != "0.45.0" {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestHistoryPath(t *testing.T) {
	cfg := Default()
	if !strings.HasSuffix(cfg.HistoryPath(), "history.jsonl") {
		t.Fatalf("default history path = %q", cfg.HistoryPath())
	}
	cfg.HistoryFile = "/var/tmp/h.jsonl"
	if cfg.HistoryPath() != "/var/tmp/h.jsonl" {
		t.Fatalf("history path override ignored: %q", cfg.HistoryPath())
	}
}
