package cmdline

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goliatone/go-cliconf/logging"
	"github.com/goliatone/go-cliconf/rc"
	"github.com/spf13/cobra"
)

// NewUserDefaultsCommand builds a prefix-aliased group with show, get, set and
// rm subcommands over store.
func NewUserDefaultsCommand(use, short string, logger *logging.Logger, store *rc.Store) *cobra.Command {
	logger = orDiscard(logger, use)
	group := Aliased(&cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	})
	VerbosityFlag(group, logger)

	group.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the user-defaults file contents.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				data, err := store.Encode()
				if err != nil {
					return fmt.Errorf("Cannot show `%s': %w", store.Path(), err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(data)))
				return nil
			},
		},
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print a key from the user-defaults file.",
			Long: `Retrieves the value of the requested KEY and displays it. The KEY may
contain dots (.) to access values from subsections in the TOML document.`,
			Args: noArgsIsHelp(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					return cmd.Help()
				}
				value, ok := store.Lookup(args[0])
				if !ok {
					return fmt.Errorf("Cannot find object named `%s' at `%s'", args[0], store.Path())
				}
				fmt.Fprintln(cmd.OutOrStdout(), rc.FormatValue(value))
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Set the value for a key on the user-defaults file.",
			Long: `If KEY contains dots (.), then this sets nested subsection variables on
the configuration file. Values are parsed and translated following the rules
of TOML, and kept as strings when they do not parse.

This command overrides the current configuration file and may erase any
comments added by hand.`,
			Args: noArgsIsHelp(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					return cmd.Help()
				}
				key := args[0]
				if err := store.Set(key, rc.ParseValue(args[1])); err != nil {
					logger.Error(fmt.Sprintf("Cannot set object named `%s' at `%s'", key, store.Path()), slog.Any("error", err))
					return fmt.Errorf("Cannot set object named `%s' at `%s'", key, store.Path())
				}
				return store.Write()
			},
		},
		&cobra.Command{
			Use:   "rm KEY",
			Short: "Remove the given key from the configuration file.",
			Long: `Removes KEY from the configuration file. If KEY names a section, the
whole section is removed.

This command overrides the current configuration file and may erase any
comments added by hand.`,
			Args: noArgsIsHelp(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					return cmd.Help()
				}
				key := args[0]
				if err := store.Delete(key); err != nil {
					logger.Error(fmt.Sprintf("Cannot delete object named `%s' at `%s'", key, store.Path()), slog.Any("error", err))
					return fmt.Errorf("Cannot delete object named `%s' at `%s'", key, store.Path())
				}
				return store.Write()
			},
		},
	)
	return group
}

// noArgsIsHelp accepts either no argument, to print help, or exactly n.
func noArgsIsHelp(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) == 0 || len(args) == n {
			return nil
		}
		return usageErrorf("expected %d argument(s), received %d", n, len(args))
	}
}

func orDiscard(logger *logging.Logger, name string) *logging.Logger {
	if logger != nil {
		return logger
	}
	return logging.Setup(name, logging.WithLowLevelWriter(io.Discard), logging.WithHighLevelWriter(io.Discard))
}
