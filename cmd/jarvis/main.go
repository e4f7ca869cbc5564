// Jarvis is a bilingual (English/Hindi) voice assistant daemon that turns
// utterances into commands, gates dangerous ones behind an explicit
// confirmation and dispatches the rest to an automation host.
//
// Usage:
//
//	jarvis serve [--config /path/to/jarvis.yaml]
//	jarvis parse "Chrome kholo"
//	jarvis connect --url ws://localhost:8080/ws
//	jarvis version
//
// @title       jarvis API
// @version     1.0
// @description Bilingual (English/Hindi) command interpretation with confirmation-gated dispatch.
// @BasePath    /
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nadzzz/jarvis/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          "jarvis",
		Short:        "Bilingual command interpretation and confirmation-gated dispatch",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (e.g. configs/jarvis.yaml)")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("loading configuration: %w", err)
		}
		config.SetupLogging(cfg.Logging)
		return cfg, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newParseCmd(load),
		newConnectCmd(load),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "jarvis %s\n", version)
			},
		},
	)
	return root
}

// loader loads configuration and sets up logging.
type loader func() (*config.Config, error)

func logStartup(cmd string) {
	slog.Info("jarvis starting", "version", version, "command", cmd)
}
