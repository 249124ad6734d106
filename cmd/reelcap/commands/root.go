package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reelcap/reelcap/internal/logger"
)

var (
	rootCmd = &cobra.Command{
		Use:   "reelcap",
		Short: "reelcap - command-driven screen recorder",
		Long: `reelcap records your screen, a region of it, or a single application
window to a video file.

Targets, duration, frame rate and quality come from flags or from saved
presets; a recording runs for a fixed duration or until cancelled, and
always leaves a valid artifact behind.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(viper.GetString("log_level"), viper.GetBool("pretty_log"))
		},
	}
)

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("pretty-log", true, "human-readable log output")
	rootCmd.PersistentFlags().String("preset-dir", "", "preset directory (default is $HOME/.config/reelcap/presets)")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("pretty_log", rootCmd.PersistentFlags().Lookup("pretty-log"))
	viper.BindPFlag("preset_dir", rootCmd.PersistentFlags().Lookup("preset-dir"))
}

// Exit codes reported by the CLI.
const (
	ExitOK         = 0
	ExitValidation = 1
	ExitRuntime    = 2
	ExitCancelled  = 130
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code := ExitValidation
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			code = exitErr.code
			if exitErr.err == nil {
				// A bare exit code: the command already reported the
				// outcome on its own terms.
				os.Exit(code)
			}
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(code)
	}
}

// exitError carries a CLI exit code alongside the error. A nil err exits
// with the code silently; command RunE functions return it instead of
// calling os.Exit so deferred cleanup still runs.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}
