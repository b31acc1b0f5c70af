package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/config"
	"github.com/panel-layout/backend/internal/logging"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.AppConfig
	logger *zap.Logger
)

// rootCmd serves the API when run without a subcommand
var rootCmd = &cobra.Command{
	Use:   "panel-layout",
	Short: "Panel layout service",
	Long: `Stores panel layouts per project and changes them through
free-form commands, direct edits and optimize runs.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			// Get the executable's directory for config resolution
			exePath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to get executable path: %w", err)
			}
			path = filepath.Join(filepath.Dir(exePath), "PanelLayout.config")
		}

		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		configPath = path

		logger, err = logging.New(cfg.Advanced.LogLevel, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the XML config file (default: next to the executable)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
