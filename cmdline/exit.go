package cmdline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Exit codes returned by Execute.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// UsageError reports a malformed command line.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	if e == nil || e.Err == nil {
		return "usage error"
	}
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsUsage(err), isCobraUsage(err):
		return ExitUsage
	default:
		return ExitFailure
	}
}

func isCobraUsage(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "flag needs an argument", "invalid argument", "accepts ", "requires at least"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

// Execute expands command aliases in args, runs root and returns the exit
// code. Errors are printed to root's error stream.
func Execute(ctx context.Context, root *cobra.Command, args []string) int {
	expanded, err := ExpandAliases(root, args)
	if err != nil {
		printError(root.ErrOrStderr(), err)
		return ExitCode(err)
	}
	root.SetArgs(expanded)
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})
	if err := root.ExecuteContext(ctx); err != nil {
		printError(root.ErrOrStderr(), err)
		return ExitCode(err)
	}
	return ExitOK
}

// Main runs root with the process arguments and exits.
func Main(root *cobra.Command) {
	os.Exit(Execute(context.Background(), root, os.Args[1:]))
}

func printError(w io.Writer, err error) {
	var usage *UsageError
	if errors.As(err, &usage) {
		fmt.Fprintf(w, "Usage error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
