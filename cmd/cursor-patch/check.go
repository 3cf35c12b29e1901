package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cursor-tools/cursor-patch/internal/engine"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report what a patch would do without writing anything",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s := newSession(cmd)
		rep := s.engine.Inspect(cmd.Context())
		s.Close()

		printReport(rep)
		if !rep.Ready() {
			os.Exit(1)
		}
	},
}

func printReport(rep engine.Report) {
	field := func(name, value string) {
		if value == "" {
			value = faint.Sprint("-")
		}
		fmt.Printf("%-12s %s\n", name+":", value)
	}

	field("Descriptor", rep.Paths.Descriptor)
	field("Script", rep.Paths.Script)
	field("Version", rep.Version)
	field("Supported", rep.Constraint)

	switch {
	case rep.Pending > 0:
		field("Pending", warning.Sprintf("%d replacement(s)", rep.Pending))
	case rep.Paths.Script != "":
		field("Pending", "none (already patched)")
	}
	if rep.BackupExists {
		field("Backup", rep.Paths.BackupPath())
	}
	for _, p := range rep.Running {
		field("Running", warning.Sprintf("%s (pid %d), restart after patching", p.Name, p.PID))
	}

	fmt.Println()
	if rep.Ready() {
		success.Println("Ready to patch")
		return
	}
	for _, err := range multierr.Errors(rep.Err) {
		failure.Fprint(os.Stderr, "✗ ")
		fmt.Fprintln(os.Stderr, indent(err.Error(), "  "))
	}
}
