package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/AnyUserName/imgfit-cli/internal/config"
	"github.com/AnyUserName/imgfit-cli/internal/logger"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	verbose    bool
	noColor    bool
	configPath string

	cfg *config.Config
	log = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "imgfit",
	Short: "Shrink images to fit a size budget",
	Long: `imgfit downsamples photos and re-encodes them at decreasing quality
until they fit a size ceiling, then writes them to disk or uploads them.

The ceiling is measured in whole kilobytes; when even the lowest quality
is too large the smallest encoding is kept and reported as over budget.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "imgfit: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./imgfit.yaml or ~/.imgfit/imgfit.yaml)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"imgfit %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// setup loads configuration and builds the logger before any subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c

	debug := verbose || cfg.Log.Debug
	log = logger.NewConsole(debug, "imgfit", noColor || cfg.Log.NoColor)
	log.Debug().Str("cmd", cmd.Name()).Str("config", configPath).Msg("starting")
	return nil
}
