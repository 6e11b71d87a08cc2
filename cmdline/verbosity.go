package cmdline

import (
	"fmt"

	"github.com/goliatone/go-cliconf/logging"
	"github.com/spf13/cobra"
)

// VerbosityName is the flag and parameter name of the verbosity option.
const VerbosityName = "verbose"

// VerbosityUsage is the help text of the verbosity flag.
const VerbosityUsage = "Increase the verbosity level from 0 (only error messages) to 1 (adds warnings), 2 (adds info messages) and 3 (adds debugging messages) by repeating the --verbose option (e.g. '-vvv' for debug)."

// VerbosityOption is a counted -v/--verbose resource option that sets the
// level of logger once resolved. Like any resource option it may come from a
// configuration unit or the environment.
func VerbosityOption(logger *logging.Logger, envVar string) Option {
	return Option{
		Name:      VerbosityName,
		Shorthand: "v",
		Usage:     VerbosityUsage,
		Default:   0,
		Kind:      KindCount,
		EnvVar:    envVar,
		Callback: func(value any) error {
			n, ok := toInt(value)
			if !ok {
				return usageErrorf("invalid verbosity %v", value)
			}
			n = min(max(n, 0), 3)
			if logger != nil {
				logger.SetVerbosity(n)
				logger.Debug(fmt.Sprintf("Level of Logger(%q) was set to %s", logger.Name(), logging.VerbosityLevel(n)))
			}
			return nil
		},
	}
}

// VerbosityFlag adds a persistent counted -v/--verbose flag to cmd and
// applies it to logger before any subcommand runs.
func VerbosityFlag(cmd *cobra.Command, logger *logging.Logger) {
	cmd.PersistentFlags().CountP(VerbosityName, "v", VerbosityUsage)
	previous := cmd.PersistentPreRunE
	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if logger != nil {
			logger.SetVerbosity(Verbosity(c))
		}
		if previous != nil {
			return previous(c, args)
		}
		return nil
	}
}

// Verbosity returns the -v count given to cmd, 0 when it has no such flag.
func Verbosity(cmd *cobra.Command) int {
	flag := cmd.Flags().Lookup(VerbosityName)
	if flag == nil {
		return 0
	}
	n, err := cmd.Flags().GetCount(VerbosityName)
	if err != nil {
		return 0
	}
	return n
}
