package cmdline

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	cliconf "github.com/goliatone/go-cliconf"
	"github.com/goliatone/go-cliconf/logging"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const testGroup = "cliconf.test.config"

func newTestLoader(t *testing.T) *cliconf.Loader {
	t.Helper()
	registry, err := cliconf.LoadManifests(filepath.Join("testdata", "registry.yaml"))
	require.NoError(t, err)
	return cliconf.New(
		cliconf.WithRegistry(registry),
		cliconf.WithModuleRoots(filepath.Join("testdata", "modules")),
		cliconf.WithArena(cliconf.NewArena()),
	)
}

func newTestLogger(lo, hi *bytes.Buffer) *logging.Logger {
	return logging.Setup("cliconf.test",
		logging.WithFormat(logging.FormatMessage),
		logging.WithLowLevelWriter(lo),
		logging.WithHighLevelWriter(hi),
	)
}

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(root *cobra.Command, args ...string) result {
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	code := Execute(context.Background(), root, args)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}
