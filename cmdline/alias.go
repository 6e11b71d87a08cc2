package cmdline

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

const aliasedAnnotation = "cliconf.aliased"

// Aliased enables prefix matching of group's subcommands: "te" selects
// "test" when no other subcommand starts with "te". It returns group.
func Aliased(group *cobra.Command) *cobra.Command {
	if group.Annotations == nil {
		group.Annotations = map[string]string{}
	}
	group.Annotations[aliasedAnnotation] = "true"
	return group
}

func isAliased(cmd *cobra.Command) bool {
	return cmd.Annotations[aliasedAnnotation] == "true"
}

// ExpandAliases rewrites subcommand prefixes in args to full names, walking
// down from root. Exact names and cobra aliases always win. A prefix shared
// by several subcommands is a usage error. Hidden and deprecated subcommands
// never match a prefix.
func ExpandAliases(root *cobra.Command, args []string) ([]string, error) {
	out := slices.Clone(args)
	current := root
	for i, arg := range out {
		if arg == "--" {
			break
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		next, name, err := findSubcommand(current, arg)
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}
		out[i] = name
		current = next
	}
	return out, nil
}

func findSubcommand(cmd *cobra.Command, arg string) (*cobra.Command, string, error) {
	var matches []*cobra.Command
	for _, sub := range cmd.Commands() {
		if sub.Name() == arg || sub.HasAlias(arg) {
			return sub, arg, nil
		}
		// hidden and deprecated commands are reachable by full name only
		if sub.Hidden || sub.Deprecated != "" {
			continue
		}
		if strings.HasPrefix(sub.Name(), arg) {
			matches = append(matches, sub)
		}
	}
	if !isAliased(cmd) || len(matches) == 0 {
		return nil, "", nil
	}
	if len(matches) > 1 {
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.Name())
		}
		slices.Sort(names)
		return nil, "", usageErrorf("too many matches: %s", strings.Join(names, ", "))
	}
	return matches[0], matches[0].Name(), nil
}
