package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"

	"github.com/cursor-tools/cursor-patch/internal/audit"
	"github.com/cursor-tools/cursor-patch/internal/config"
	"github.com/cursor-tools/cursor-patch/internal/engine"
	"github.com/cursor-tools/cursor-patch/internal/install"
	"github.com/cursor-tools/cursor-patch/internal/logging"
	"github.com/cursor-tools/cursor-patch/internal/patching"
	"github.com/cursor-tools/cursor-patch/internal/precheck"
	"github.com/cursor-tools/cursor-patch/internal/privilege"
)

var (
	version = "0.1.0"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "cursor-patch",
	Short: "Neutralize Cursor's machine identifier lookup",
	Long: `cursor-patch locates the installed Cursor application, checks that its version
is supported and rewrites the machine id getters in out/main.js, keeping a
backup at out/main.js.old.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runPatch(cmd)
	},
}

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Patch the installation (default command)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runPatch(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cursor-patch v%s\n", version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is "+config.DefaultFile()+")")
	pf.String("app-dir", "", "application root containing package.json (skips discovery)")
	pf.String("min-version", "", "lowest supported application version")
	pf.String("max-version", "", "highest supported application version")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (text or json)")
	pf.String("log-file", "", "also write logs to this file")
	pf.Bool("no-lock", false, "do not take the per-installation run lock")

	rootCmd.AddCommand(patchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session is what every command needs after config and logging are set up.
type session struct {
	cfg     *config.Config
	engine  *engine.Engine
	history *audit.Logger
	closers []io.Closer
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i].Close()
	}
}

// loadConfig loads and validates config, exiting on fatal problems. The
// returned warnings are reported by the caller once logging is set up.
func loadConfig(cmd *cobra.Command) (*config.Config, []error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		for _, err := range result.Fatals {
			fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		}
		os.Exit(1)
	}
	return cfg, result.Warnings
}

// logConfigWarnings reports corrected config values through the configured
// logger.
func logConfigWarnings(warnings []error) {
	log := logging.L("config")
	for _, err := range warnings {
		log.Warn("config value corrected", logging.KeyError, err)
	}
}

// newSession loads config, initializes logging and builds the engine. It
// exits the process on configuration errors.
func newSession(cmd *cobra.Command) *session {
	cfg, warnings := loadConfig(cmd)
	s := &session{cfg: cfg}

	var output io.Writer = os.Stderr
	if cfg.LogFile != "" {
		rw, err := logging.NewRotatingWriter(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		s.closers = append(s.closers, rw)
		output = io.MultiWriter(os.Stderr, rw)
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, output)
	logConfigWarnings(warnings)
	log := logging.L("main")
	logHost(log)

	constraint, err := cfg.Constraint()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid version range: %v\n", err)
		os.Exit(1)
	}

	var opts []engine.Option
	if !cfg.Lock {
		opts = append(opts, engine.WithoutLock())
	}
	if cfg.History {
		h, err := audit.NewLogger(cfg.HistoryPath(), logging.L("history"))
		if err != nil {
			// History is best effort; patching still proceeds.
			log.Warn("history disabled", "path", cfg.HistoryPath(), "error", err)
		} else {
			s.history = h
			s.closers = append(s.closers, h)
			opts = append(opts, engine.WithHistory(h))
		}
	}

	var resolverOpts []install.Option
	if cfg.InstallDir != "" {
		resolverOpts = append(resolverOpts, install.WithInstallDir(cfg.InstallDir))
	}

	s.engine = engine.New(logging.L("engine"),
		install.NewResolver(logging.L("install"), resolverOpts...),
		precheck.NewChecker(logging.L("precheck"), constraint),
		patching.NewTransformer(logging.L("patching")),
		opts...)
	return s
}

func logHost(log *slog.Logger) {
	info, err := host.Info()
	if err != nil {
		log.Debug("host info unavailable", "error", err)
		return
	}
	log.Debug("host",
		"os", info.OS,
		"platform", info.Platform,
		"platformVersion", info.PlatformVersion,
		"arch", info.KernelArch,
		"version", version)
}

func runPatch(cmd *cobra.Command) {
	s := newSession(cmd)
	out := s.engine.Run(cmd.Context())
	s.Close()

	if !out.Success {
		failure.Fprintf(os.Stderr, "Patch failed (%s): %s\n", out.Kind(), out.Reason())
		printHint(out.Kind())
		os.Exit(1)
	}
	success.Printf("%s\n", capitalize(out.Reason()))
	if out.BackupPath != "" {
		fmt.Printf("Backup: %s\n", out.BackupPath)
	}
}

// printHint adds a retry suggestion for failures the user can act on.
func printHint(kind patching.Kind) {
	switch kind {
	case patching.PermissionDenied:
		if hint := privilege.ElevationHint(); hint != "" {
			warning.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
	case patching.InstallationNotFound, patching.FileNotFound:
		warning.Fprintln(os.Stderr, "Hint: pass --app-dir with the application's resources/app directory")
	case patching.InstanceLocked:
		warning.Fprintln(os.Stderr, "Hint: wait for the other run to finish, or pass --no-lock")
	}
}
