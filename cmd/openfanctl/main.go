// Openfanctl is a command line utility for OpenFan fan controllers.
//
// It discovers controllers on the local network via mDNS, reads fan
// status, and sets fan speed, either one-shot from the command line or
// interactively through a live watch screen.
//
// Usage:
//
//	openfanctl [command] [flags]
//
// Running without arguments launches the watch screen.
// See 'openfanctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wayopenfan/wayopenfan/internal/config"
	"github.com/wayopenfan/wayopenfan/internal/logging"
	"github.com/wayopenfan/wayopenfan/internal/version"
)

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "openfanctl",
	Short: "OpenFan Controller Utility",
	Long: `A command line utility for OpenFan fan controllers.

Discovers controllers advertised over mDNS, reads fan status, and sets
fan speed on one or all controllers.

If no command is specified, the interactive watch screen will launch
automatically.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.InitializeFromEnv(); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the watch screen when no subcommand provided
		return runWatch(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("openfanctl %s\n", version.Full())
	},
}
