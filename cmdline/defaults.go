package cmdline

import (
	"fmt"
	"slices"

	"github.com/goliatone/go-cliconf/layering"
	"github.com/goliatone/go-cliconf/rc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DefaultMap holds application provided defaults. The root command reads
// top-level keys and each subcommand reads the table named after it.
type DefaultMap map[string]any

// LoadDefaultMap reads a default map from any format viper understands,
// picked by the file extension. Keys are lower-cased.
func LoadDefaultMap(path string) (DefaultMap, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cliconf: read default map %s: %w", path, err)
	}
	return DefaultMap(v.AllSettings()), nil
}

// DefaultMapFromStore exposes one section of a user defaults store as a
// default map. The whole store is used when section is empty.
func DefaultMapFromStore(store *rc.Store, section string) DefaultMap {
	if store == nil {
		return nil
	}
	if section == "" {
		return DefaultMap(store.Map())
	}
	value, ok := store.Lookup(section)
	if !ok {
		return nil
	}
	table, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return DefaultMap(layering.Clone(table))
}

// MergeDefaultMaps merges maps, strongest first.
func MergeDefaultMaps(maps ...DefaultMap) DefaultMap {
	layers := make([]map[string]any, 0, len(maps))
	for _, m := range maps {
		layers = append(layers, m)
	}
	return DefaultMap(layering.MergeMaps(layers...))
}

// Lookup finds name under the table of cmd's path below the root command.
func (m DefaultMap) Lookup(cmd *cobra.Command, name string) (any, bool) {
	if m == nil {
		return nil, false
	}
	var path []string
	for c := cmd; c != nil && c.HasParent(); c = c.Parent() {
		path = append(path, c.Name())
	}
	slices.Reverse(path)
	return layering.Lookup(m, append(path, name)...)
}
