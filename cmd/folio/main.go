package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/folio-motion/config"
	"github.com/lixenwraith/folio-motion/registry"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - animated portfolio shell for the terminal",
	Long: `folio renders the portfolio pages in the terminal and drives every
registered animation through a single controller and frame scheduler.

Run without arguments to open the shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// The shell owns the terminal, so its logs go to a file
		logFile := ""
		if cmd == cmd.Root() || cmd.Name() == "run" {
			logFile = cfg.LogFile
		}
		logger, err = newLogger(logFile, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runShell,
}

// runCmd opens the shell
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the portfolio shell",
	Long: `Opens the terminal shell on the home page.

Keys:
  Tab / Shift-Tab  next / previous page
  1-9              jump to page
  p                toggle low-power mode
  r                reset every animation
  q / Esc          quit

Mouse hover and click on an element play its animation.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(lowPowerCmd)
}

func newLogger(file string, debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return nil, err
		}
		zcfg.OutputPaths = []string{file}
		zcfg.ErrorOutputPaths = []string{file}
	}
	return zcfg.Build()
}

// loadCatalog builds the portfolio catalog from the configured seed
func loadCatalog() *registry.Catalog {
	seed := int64(cfg.Catalog.Seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return registry.Portfolio(rand.New(rand.NewSource(seed)))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
