package cmdline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	cliconf "github.com/goliatone/go-cliconf"
	"github.com/goliatone/go-cliconf/logging"
	"github.com/spf13/cobra"
)

// listWidth is the column budget of one "config list" line after its indent.
const listWidth = 75

// NewConfigGroupCommand builds a prefix-aliased group with list, describe and
// copy subcommands over the resources registered under group.
func NewConfigGroupCommand(use, short string, logger *logging.Logger, loader *cliconf.Loader, group string) *cobra.Command {
	logger = orDiscard(logger, use)
	if loader == nil {
		loader = cliconf.New(cliconf.WithLogHandler(logger.Handler()))
	}
	cg := &configGroup{loader: loader, group: group, logger: logger}

	cmd := Aliased(&cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	})
	VerbosityFlag(cmd, logger)
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List registered configuration resources.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return cg.list(cmd)
			},
		},
		&cobra.Command{
			Use:   "describe NAME...",
			Short: "Describe specific configuration resources.",
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					return cmd.Help()
				}
				return cg.describe(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "copy SOURCE DESTINATION",
			Short: "Copy a configuration resource so it can be modified locally.",
			Args:  noArgsIsHelp(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					return cmd.Help()
				}
				return cg.copy(args[0], args[1])
			},
		},
	)
	return cmd
}

type configGroup struct {
	loader *cliconf.Loader
	group  string
	logger *logging.Logger
}

func (g *configGroup) entries() (map[string]cliconf.Entry, error) {
	registry := g.loader.Registry()
	if registry == nil {
		return nil, nil
	}
	list, err := registry.Entries(g.group)
	if err != nil {
		return nil, err
	}
	out := make(map[string]cliconf.Entry, len(list))
	for _, entry := range list {
		out[entry.Name] = entry
	}
	return out, nil
}

// parentModule drops the last dotted segment, "a.b.c" becomes "a.b".
func parentModule(module string) string {
	if i := strings.LastIndex(module, "."); i >= 0 {
		return module[:i]
	}
	return module
}

func (g *configGroup) list(cmd *cobra.Command) error {
	entries, err := g.entries()
	if err != nil {
		return err
	}

	var modules []string
	for _, entry := range entries {
		modules = append(modules, parentModule(entry.Module))
	}
	slices.Sort(modules)
	modules = slices.Compact(modules)
	var kept []string
	for _, m := range modules {
		if !slices.ContainsFunc(kept, func(k string) bool { return strings.HasPrefix(m, k) }) {
			kept = append(kept, m)
		}
	}

	verbose := Verbosity(cmd)
	header := color.New(color.Bold).SprintFunc()
	out := cmd.OutOrStdout()
	for _, module := range kept {
		var names []string
		longest := 0
		for name, entry := range entries {
			if strings.HasPrefix(entry.Module, module) {
				names = append(names, name)
				longest = max(longest, len(name))
			}
		}
		slices.Sort(names)
		leftover := listWidth - longest

		fmt.Fprintln(out, header("module: "+module))
		for _, name := range names {
			summary := ""
			if verbose >= 1 {
				summary = g.summary(cmd, entries[name], verbose)
			}
			if len(summary) > leftover-3 {
				summary = summary[:max(leftover-3, 0)] + "..."
			}
			fmt.Fprintf(out, "    %-*s   %s\n", longest, name, summary)
		}
	}
	return nil
}

func (g *configGroup) summary(cmd *cobra.Command, entry cliconf.Entry, verbose int) string {
	summary, err := g.describeEntry(cmd, entry)
	if err != nil {
		if verbose >= 2 {
			g.logger.Error("cannot load configuration resource", slog.String("name", entry.Name), slog.Any("error", err))
		}
		return "(cannot be loaded; add another -v for details)"
	}
	return strings.ReplaceAll(summary, "\n", " ")
}

func (g *configGroup) describeEntry(cmd *cobra.Command, entry cliconf.Entry) (string, error) {
	if entry.Attr != "" {
		value, err := g.loader.LoadAttribute(cmd.Context(), []string{entry.Name}, "", cliconf.WithGroup(g.group))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%T] %v", value, value), nil
	}
	if _, err := g.loader.Load(cmd.Context(), []string{entry.Name}, cliconf.WithGroup(g.group)); err != nil {
		return "", err
	}
	path, err := g.path(entry.Name)
	if err != nil {
		return "", err
	}
	doc, err := cliconf.UnitDoc(path)
	if err != nil {
		return "", err
	}
	if doc == "" {
		return "[module] [undocumented]", nil
	}
	return "[module] " + cliconf.Summary(doc), nil
}

func (g *configGroup) path(name string) (string, error) {
	units, err := g.loader.Resolve([]string{name}, g.group, "")
	if err != nil {
		return "", err
	}
	return units[0].Path, nil
}

func (g *configGroup) describe(cmd *cobra.Command, names []string) error {
	entries, err := g.entries()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	header := color.New(color.Bold).SprintFunc()
	for _, name := range names {
		entry, ok := entries[name]
		if !ok {
			g.logger.Error(fmt.Sprintf("Cannot find configuration resource `%s'", name))
			continue
		}
		fmt.Fprintln(out, header("Configuration: "+entry.Name))
		fmt.Fprintf(out, "Resource: %s\n\n", entry.Value())
		if entry.Attr != "" {
			continue
		}

		path, err := g.path(name)
		if err != nil {
			return err
		}
		if Verbosity(cmd) >= 1 {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("cliconf: read %s: %w", path, err)
			}
			fmt.Fprintln(out, "Contents:")
			fmt.Fprintln(out, string(data))
			continue
		}
		doc, err := cliconf.UnitDoc(path)
		if err != nil {
			return err
		}
		if strings.TrimSpace(doc) != "" {
			fmt.Fprintln(out, "Documentation:")
			fmt.Fprintln(out, doc)
		}
	}
	return nil
}

func (g *configGroup) copy(source, destination string) error {
	entries, err := g.entries()
	if err != nil {
		return err
	}
	if _, ok := entries[source]; !ok {
		g.logger.Error(fmt.Sprintf("Cannot find configuration resource `%s'", source))
		return fmt.Errorf("Cannot find configuration resource `%s'", source)
	}
	path, err := g.path(source)
	if err != nil {
		return err
	}
	g.logger.Info(fmt.Sprintf("cp %s -> %s", path, destination))
	return copyFile(path, destination)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("cliconf: copy %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("cliconf: copy to %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("cliconf: copy to %s: %w", dst, err)
	}
	return out.Close()
}
