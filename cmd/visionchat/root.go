package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	verbose bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "visionchat",
	Short: "Manage the state of the vision chat client",
	Long: `Manage the persisted state of the vision chat client.

The state document holds the chat history, the settings object and the last
window geometry. It is read from the backend selected in config.yaml
(file, bolt, sqlite, redis or memory).

Quick Start:
  visionchat history list            # Show the stored conversation
  visionchat analyze cat.png -p "?"  # Ask the model about an image
  visionchat serve --http :8080      # Serve the boundary operations`,
	Version:      version,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file (default ./config.yaml or the profile directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
