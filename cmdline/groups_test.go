package cmdline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	cliconf "github.com/goliatone/go-cliconf"
	"github.com/goliatone/go-cliconf/rc"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserDefaults(t *testing.T) (*rc.Store, func() *cobra.Command, *bytes.Buffer) {
	t.Helper()
	store, err := rc.New(filepath.Join(t.TempDir(), "app.toml"))
	require.NoError(t, err)
	var lo, hi bytes.Buffer
	logger := newTestLogger(&lo, &hi)
	return store, func() *cobra.Command {
		return NewUserDefaultsCommand("rc", "Manage user defaults.", logger, store)
	}, &hi
}

func TestUserDefaultsSetGetShow(t *testing.T) {
	store, newCmd, _ := newUserDefaults(t)

	res := execute(newCmd(), "set", "section1.an_int", "15")
	require.Equal(t, ExitOK, res.code, res.stderr)
	res = execute(newCmd(), "set", "foo", "bar")
	require.Equal(t, ExitOK, res.code, res.stderr)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "foo = \"bar\"\n\n[section1]\nan_int = 15\n", string(data))

	res = execute(newCmd(), "get", "section1.an_int")
	require.Equal(t, ExitOK, res.code)
	assert.Equal(t, "15\n", res.stdout)

	res = execute(newCmd(), "get", "section1")
	require.Equal(t, ExitOK, res.code)
	assert.Equal(t, "an_int = 15\n", res.stdout)

	res = execute(newCmd(), "show")
	require.Equal(t, ExitOK, res.code)
	assert.Equal(t, strings.TrimSpace(string(data))+"\n", res.stdout)
}

func TestUserDefaultsValueParsing(t *testing.T) {
	store, newCmd, _ := newUserDefaults(t)

	require.Equal(t, ExitOK, execute(newCmd(), "set", "words", "hello world").code)
	require.Equal(t, ExitOK, execute(newCmd(), "set", "flag", "true").code)
	require.Equal(t, ExitOK, execute(newCmd(), "set", "list", `["a", 1]`).code)

	value, err := store.Get("words")
	require.NoError(t, err)
	assert.Equal(t, "hello world", value)
	value, err = store.Get("flag")
	require.NoError(t, err)
	assert.Equal(t, true, value)
	value, err = store.Get("list")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", int64(1)}, value)
}

func TestUserDefaultsErrors(t *testing.T) {
	store, newCmd, hi := newUserDefaults(t)

	res := execute(newCmd(), "get", "missing")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Cannot find object named `missing' at `"+store.Path()+"'")

	require.Equal(t, ExitOK, execute(newCmd(), "set", "a", "1").code)
	res = execute(newCmd(), "set", "a.b", "2")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Cannot set object named `a.b' at `"+store.Path()+"'")
	assert.Contains(t, hi.String(), "Cannot set object named `a.b'")

	res = execute(newCmd(), "rm", "nothing")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Cannot delete object named `nothing' at `"+store.Path()+"'")

	res = execute(newCmd(), "get", "a", "b")
	assert.Equal(t, ExitUsage, res.code)
}

func TestUserDefaultsRemoveAndAliases(t *testing.T) {
	store, newCmd, _ := newUserDefaults(t)
	require.Equal(t, ExitOK, execute(newCmd(), "set", "section.key", "1").code)

	res := execute(newCmd(), "s")
	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "too many matches: set, show")

	res = execute(newCmd(), "sh")
	require.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stdout, "[section]")

	require.Equal(t, ExitOK, execute(newCmd(), "r", "section").code)
	assert.False(t, store.Has("section"))

	res = execute(newCmd(), "get")
	assert.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stdout, "Usage:")
}

func newConfigGroup(t *testing.T) (func() *cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	var lo, hi bytes.Buffer
	logger := newTestLogger(&lo, &hi)
	loader := newTestLoader(t)
	return func() *cobra.Command {
		return NewConfigGroupCommand("config", "Inspect configuration resources.", logger, loader, testGroup)
	}, &lo, &hi
}

func TestConfigGroupList(t *testing.T) {
	newCmd, _, _ := newConfigGroup(t)

	res := execute(newCmd(), "list")
	require.Equal(t, ExitOK, res.code, res.stderr)
	lines := strings.Split(strings.TrimRight(res.stdout, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "module: app", lines[0])
	assert.Equal(t, "    basic-config     ", lines[1])
	assert.Equal(t, "    verbose-config   ", lines[6])
}

func TestConfigGroupListVerbose(t *testing.T) {
	newCmd, _, hi := newConfigGroup(t)

	res := execute(newCmd(), "list", "-v")
	require.Equal(t, ExitOK, res.code, res.stderr)
	out := res.stdout
	assert.Contains(t, out, "    basic-config     [module] [undocumented]\n")
	assert.Contains(t, out, "    first            [module] First configuration of the test application.\n")
	assert.Contains(t, out, "    complex-var      [map[string]interface {}] map[name:complex size:3]\n")
	assert.Contains(t, out, "    broken           (cannot be loaded; add another -v for details)\n")
	assert.Empty(t, hi.String())

	res = execute(newCmd(), "-vv", "list")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, hi.String(), "cannot load configuration resource")
}

func TestConfigGroupListTruncates(t *testing.T) {
	color.NoColor = true
	name := strings.Repeat("n", 40)
	registry := cliconf.NewMemoryRegistry()
	require.NoError(t, registry.Register(testGroup, cliconf.Entry{Name: name, Module: "app.first"}))
	loader := cliconf.New(
		cliconf.WithRegistry(registry),
		cliconf.WithModuleRoots(filepath.Join("testdata", "modules")),
		cliconf.WithArena(cliconf.NewArena()),
	)

	res := execute(NewConfigGroupCommand("config", "", nil, loader, testGroup), "list", "-v")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, "module: app\n    "+name+"   [module] First configuration of ...\n", res.stdout)
}

func TestConfigGroupDescribe(t *testing.T) {
	newCmd, _, hi := newConfigGroup(t)

	res := execute(newCmd(), "describe", "first", "missing")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, "Configuration: first\nResource: app.first\n\nDocumentation:\nFirst configuration of the test application.\n\nSets the variable a.\n", res.stdout)
	assert.Contains(t, hi.String(), "Cannot find configuration resource `missing'")

	res = execute(newCmd(), "describe", "-v", "first")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Contents:\n// First configuration")
	assert.Contains(t, res.stdout, "var a = 1;")

	res = execute(newCmd(), "describe", "complex-var")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, "Configuration: complex-var\nResource: app.complex:cplx\n\n", res.stdout)
}

func TestConfigGroupCopy(t *testing.T) {
	newCmd, lo, _ := newConfigGroup(t)
	dst := filepath.Join(t.TempDir(), "first.js")

	res := execute(newCmd(), "copy", "-vv", "first", dst)
	require.Equal(t, ExitOK, res.code, res.stderr)
	want, err := os.ReadFile(filepath.Join("testdata", "modules", "app", "first.js"))
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Contains(t, lo.String(), "-> "+dst)

	res = execute(newCmd(), "co", "missing", dst)
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Cannot find configuration resource `missing'")
}
