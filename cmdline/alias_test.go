package cmdline

import (
	"errors"
	"fmt"
	"testing"

	cliconf "github.com/goliatone/go-cliconf"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAliasedRoot() *cobra.Command {
	root := Aliased(&cobra.Command{Use: "cli"})
	for _, name := range []string{"test", "test-aaa"} {
		reply := map[string]string{"test": "OK", "test-aaa": "AAA"}[name]
		root.AddCommand(&cobra.Command{
			Use: name,
			RunE: func(cmd *cobra.Command, _ []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), reply)
				return nil
			},
		})
	}
	return root
}

func TestPrefixAliasing(t *testing.T) {
	res := execute(newAliasedRoot(), "te")
	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "too many matches: test, test-aaa")

	res = execute(newAliasedRoot(), "test")
	assert.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stdout, "OK")

	res = execute(newAliasedRoot(), "test-a")
	assert.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stdout, "AAA")

	res = execute(newAliasedRoot(), "test-aaaa")
	assert.NotEqual(t, ExitOK, res.code)
}

func TestExpandAliasesNested(t *testing.T) {
	root := &cobra.Command{Use: "app"}
	rc := Aliased(&cobra.Command{Use: "rc"})
	rc.AddCommand(&cobra.Command{Use: "show"}, &cobra.Command{Use: "set"})
	root.AddCommand(rc, &cobra.Command{Use: "run"})

	got, err := ExpandAliases(root, []string{"rc", "sh", "-v"})
	require.NoError(t, err)
	assert.Equal(t, []string{"rc", "show", "-v"}, got)

	// the root is not aliased, so its prefixes are left to cobra
	got, err = ExpandAliases(root, []string{"r"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r"}, got)

	_, err = ExpandAliases(root, []string{"rc", "s"})
	require.Error(t, err)
	assert.True(t, IsUsage(err))
	assert.Equal(t, "too many matches: set, show", err.Error())
}

func TestExpandAliasesSkipsHiddenAndDeprecated(t *testing.T) {
	root := &cobra.Command{Use: "app"}
	rc := Aliased(&cobra.Command{Use: "rc"})
	rc.AddCommand(
		&cobra.Command{Use: "show"},
		&cobra.Command{Use: "shadow", Hidden: true},
		&cobra.Command{Use: "shell", Deprecated: "use show"},
	)
	root.AddCommand(rc)

	got, err := ExpandAliases(root, []string{"rc", "sh"})
	require.NoError(t, err)
	assert.Equal(t, []string{"rc", "show"}, got)

	got, err = ExpandAliases(root, []string{"rc", "shadow"})
	require.NoError(t, err)
	assert.Equal(t, []string{"rc", "shadow"}, got)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitUsage, ExitCode(&cliconf.UsageError{Parameter: "a", Reason: "missing"}))
	assert.Equal(t, ExitUsage, ExitCode(fmt.Errorf("wrapped: %w", usageErrorf("bad"))))
	assert.Equal(t, ExitUsage, ExitCode(errors.New(`unknown command "x" for "app"`)))
	assert.Equal(t, ExitFailure, ExitCode(&cliconf.ResolutionError{Reference: "x"}))
}
