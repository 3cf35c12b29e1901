package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cursor-tools/cursor-patch/internal/audit"
	"github.com/cursor-tools/cursor-patch/internal/logging"
	"github.com/cursor-tools/cursor-patch/internal/patching"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Put the pre-patch script back from its backup",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s := newSession(cmd)
		err := s.engine.Restore(cmd.Context())
		s.Close()

		if err != nil {
			failure.Fprintf(os.Stderr, "Restore failed (%s): %v\n", patching.KindOf(err), err)
			printHint(patching.KindOf(err))
			os.Exit(1)
		}
		success.Println("Restored from backup")
	},
}

var historyVerify bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded patch and restore runs",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, warnings := loadConfig(cmd)
		logging.Init(cfg.LogFormat, cfg.LogLevel, nil)
		logConfigWarnings(warnings)
		path := cfg.HistoryPath()

		entries, err := audit.ReadEntries(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read history: %v\n", err)
			os.Exit(1)
		}
		if len(entries) == 0 {
			fmt.Printf("No history at %s\n", path)
			return
		}

		for _, e := range entries {
			line := fmt.Sprintf("%s  %-15s", e.Timestamp, e.EventType)
			if v, ok := e.Details["version"]; ok {
				line += fmt.Sprintf("  version=%v", v)
			}
			if k, ok := e.Details["kind"]; ok {
				line += fmt.Sprintf("  kind=%v", k)
			}
			switch e.EventType {
			case audit.EventPatchApplied, audit.EventRestored:
				success.Println(line)
			default:
				failure.Println(line)
			}
		}

		if historyVerify {
			if err := audit.Verify(entries); err != nil {
				failure.Fprintf(os.Stderr, "History chain broken: %v\n", err)
				os.Exit(1)
			}
			success.Printf("History chain intact (%d entries)\n", len(entries))
		}
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyVerify, "verify", false, "verify the hash chain")
}
