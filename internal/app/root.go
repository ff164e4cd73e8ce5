package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfresh/internal/config"
	"github.com/blackwell-systems/brewfresh/internal/logger"
	"github.com/blackwell-systems/brewfresh/internal/output"
)

var (
	formatFlag    string
	noRefreshFlag bool
	verboseFlag   bool

	// settings is loaded from the environment before every command runs.
	settings *config.Settings

	// RootCmd is the root command for brewfresh
	RootCmd = &cobra.Command{
		Use:   "brewfresh",
		Short: "Find outdated Homebrew packages you actually use",
		Long: `brewfresh cross-references your recent shell history with the Homebrew
packages that have updates available, and lists the executables you have
been running that are out of date.

History is read from bash, zsh, nushell and fish. Count-based histories keep
their last 1000 entries; timestamped ones keep the last 14 days.

After printing the report, brewfresh starts 'brew update' in the background
so the next run sees fresh package metadata. If that update fails, the next
run prints a warning naming the recorded error until an update succeeds.

Examples:
  # Show outdated executables from recent history
  brewfresh

  # Machine-readable report, no background refresh
  brewfresh --format json --no-refresh

  # Keep the report current as you type commands
  brewfresh watch

  # Past background refresh failures
  brewfresh errors`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		RunE:              runReport,
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "show debug output")
	RootCmd.Flags().StringVarP(&formatFlag, "format", "f", "text", "output format: text, json or yaml")
	RootCmd.Flags().BoolVar(&noRefreshFlag, "no-refresh", false, "do not start a background brew update")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(refreshCmd)
	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(logCmd)
	RootCmd.AddCommand(errorsCmd)
}

// Execute runs the root command. SIGINT and SIGTERM cancel its context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RootCmd.ExecuteContext(ctx)
}

// setup loads settings and configures logging and colors.
func setup(cmd *cobra.Command, args []string) error {
	s, err := config.Load(os.Getenv)
	if err != nil {
		return err
	}

	log := logger.Default()
	if s.LogLevel != "" {
		if level, ok := logger.ParseLevel(s.LogLevel); ok {
			log.SetLevel(level)
		} else {
			s.Problems = append(s.Problems, fmt.Sprintf("BREWFRESH_LOG_LEVEL=%q is not a log level", s.LogLevel))
		}
	}
	log.SetVerbose(verboseFlag)

	for _, problem := range s.Problems {
		log.Warn("config: %s, using the default", problem)
	}

	output.ConfigureColor(output.IsColorEnabled())
	settings = s
	return nil
}
