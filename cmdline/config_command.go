package cmdline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	cliconf "github.com/goliatone/go-cliconf"
	"github.com/spf13/cobra"
)

// DumpConfigFlag is the long name of the template generation flag.
const DumpConfigFlag = "dump-config"

// RunFunc is the body of a config command.
type RunFunc func(cmd *cobra.Command, params *Params) error

// CommandOption configures NewConfigCommand.
type CommandOption func(*configCommand)

type configCommand struct {
	loader  *cliconf.Loader
	group   string
	binder  Binder
	logger  *slog.Logger
	now     func() time.Time
	help    string
	example string
}

// WithLoader sets the loader used for CONFIG arguments and resource options.
func WithLoader(loader *cliconf.Loader) CommandOption {
	return func(c *configCommand) {
		if loader != nil {
			c.loader = loader
		}
	}
}

// WithConfigGroup sets the resource group CONFIG arguments are looked up in.
func WithConfigGroup(group string) CommandOption {
	return func(c *configCommand) {
		c.group = group
	}
}

// WithOptions declares resource options, in the order they are resolved.
func WithOptions(opts ...Option) CommandOption {
	return func(c *configCommand) {
		c.binder.Options = append(c.binder.Options, opts...)
	}
}

// WithEnvironment sets the ENVIRONMENT source.
func WithEnvironment(env *Environment) CommandOption {
	return func(c *configCommand) {
		c.binder.Env = env
	}
}

// WithDefaultMap sets the DEFAULT_MAP source.
func WithDefaultMap(defaults DefaultMap) CommandOption {
	return func(c *configCommand) {
		c.binder.Defaults = defaults
	}
}

// WithCommandLogger sets the logger used for command diagnostics.
func WithCommandLogger(logger *slog.Logger) CommandOption {
	return func(c *configCommand) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now in generated templates.
func WithClock(now func() time.Time) CommandOption {
	return func(c *configCommand) {
		if now != nil {
			c.now = now
		}
	}
}

// NewConfigCommand turns base into a command that accepts configuration units
// as CONFIG arguments. The units are loaded in order into a chained context
// and every option is resolved against it before run is called. With
// -H/--dump-config FILE the command writes a template unit and exits.
func NewConfigCommand(base *cobra.Command, run RunFunc, opts ...CommandOption) *cobra.Command {
	c := &configCommand{
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
		help:    strings.TrimSpace(base.Long),
		example: strings.TrimSpace(base.Example),
	}
	if c.help == "" {
		c.help = strings.TrimSpace(base.Short)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.loader == nil {
		c.loader = cliconf.New(cliconf.WithLogHandler(c.logger.Handler()))
	}
	c.binder.Resolver = cliconf.NewResolver(c.loader)
	c.binder.Logger = c.logger

	cmd := base
	if !strings.Contains(cmd.Use, "CONFIG") {
		cmd.Use = strings.TrimSpace(cmd.Use) + " [CONFIG]..."
	}
	cmd.Long = c.help + c.extraHelp()
	cmd.Args = cobra.ArbitraryArgs
	c.binder.Bind(cmd)
	cmd.Flags().StringP(DumpConfigFlag, "H", "", "Name of the config file to be generated")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString(DumpConfigFlag); path != "" {
			return c.dumpConfig(cmd, path)
		}
		chained, err := c.loader.Load(cmd.Context(), args, cliconf.WithGroup(c.group))
		if err != nil {
			return err
		}
		c.logger.Debug("Augmenting command context with config context", slog.Int("units", len(args)))
		params, err := c.binder.Resolve(cmd.Context(), cmd, chained)
		if err != nil {
			return err
		}
		if run == nil {
			return nil
		}
		return run(cmd, params)
	}
	return cmd
}

func (c *configCommand) extraHelp() string {
	source := "names of registered resources"
	if c.group != "" {
		source = fmt.Sprintf("names of `%s' resources", c.group)
	}
	return fmt.Sprintf(`

It is possible to pass one or several JavaScript or YAML files (or %s or module
names) as CONFIG arguments to the command line which contain the parameters
listed below as variables. The options through the command-line (see below)
will override the values of configuration files. You can run this command with
<COMMAND> -H example_config.js to create a template config file.`, source)
}

func (c *configCommand) dumpConfig(cmd *cobra.Command, path string) error {
	c.logger.Debug(fmt.Sprintf("Generating configuration file `%s'...", path))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cliconf: create %s: %w", path, err)
	}
	if err := c.writeTemplate(f, cmd); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cliconf: write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file `%s' was written; exiting\n", path)
	return nil
}

func (c *configCommand) writeTemplate(w io.Writer, cmd *cobra.Command) error {
	var b strings.Builder
	fmt.Fprintf(&b, "/* Configuration file automatically generated at %s.\n\n%s\n",
		c.now().Format("02/01/2006"), cmd.CommandPath())
	if c.help != "" {
		fmt.Fprintf(&b, "\n%s", c.help)
	}
	if c.example != "" {
		fmt.Fprintf(&b, "\n\n%s", c.example)
	}
	b.WriteString("\n*/\n")

	for _, opt := range c.binder.Options {
		fmt.Fprintf(&b, "\n// %s = %s\n", opt.ParamName(), formatDefault(opt.Default))
		begin, dflt := "Optional parameter", fmt.Sprintf(" [default: %s]", formatDefault(opt.Default))
		if opt.Required {
			begin, dflt = "Required parameter", ""
		}
		fmt.Fprintf(&b, "/* %s: %s (%s)%s", begin, opt.ParamName(), opt.Declarations(), dflt)
		if usage := opt.FullUsage(); usage != "" {
			fmt.Fprintf(&b, "\n%s", usage)
		}
		if opt.Group != "" {
			keys, err := c.loader.ResourceKeys(opt.Group, nil, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(&b, "\nRegistered entries are: %s", strings.Join(keys, ", "))
		}
		b.WriteString(" */\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatDefault(value any) string {
	if value == nil {
		return "null"
	}
	return fmt.Sprint(value)
}
