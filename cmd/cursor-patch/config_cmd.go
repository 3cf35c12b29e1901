package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cursor-tools/cursor-patch/internal/config"
	"github.com/cursor-tools/cursor-patch/internal/logging"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, warnings := loadConfig(cmd)
		logging.Init(cfg.LogFormat, cfg.LogLevel, nil)
		logConfigWarnings(warnings)
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render config: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgFile
		if path == "" {
			path = config.DefaultFile()
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", path)
			os.Exit(1)
		}
		if err := config.Default().WriteFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
