package cmdline

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment backs the ENVIRONMENT source. The process environment wins
// over values read from dotenv files.
type Environment struct {
	prefix string
	dotenv map[string]string
	lookup func(string) (string, bool)
}

// NewEnvironment reads the given dotenv files, later files overriding earlier
// ones. With a prefix, options without an explicit EnvVar read PREFIX_NAME.
func NewEnvironment(prefix string, files ...string) (*Environment, error) {
	env := &Environment{prefix: prefix, lookup: os.LookupEnv}
	if len(files) == 0 {
		return env, nil
	}
	env.dotenv = make(map[string]string)
	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			return nil, fmt.Errorf("cliconf: read dotenv %s: %w", file, err)
		}
		for k, v := range values {
			env.dotenv[k] = v
		}
	}
	return env, nil
}

// Lookup reports the value of key.
func (e *Environment) Lookup(key string) (string, bool) {
	if e == nil {
		return os.LookupEnv(key)
	}
	if e.lookup != nil {
		if value, ok := e.lookup(key); ok {
			return value, true
		}
	}
	value, ok := e.dotenv[key]
	return value, ok
}

// VarFor returns the variable consulted for opt, or "" when there is none.
func (e *Environment) VarFor(opt Option) string {
	if opt.EnvVar != "" {
		return opt.EnvVar
	}
	if e == nil || e.prefix == "" {
		return ""
	}
	name := strings.ToUpper(strings.ReplaceAll(opt.Name, "-", "_"))
	return strings.ToUpper(e.prefix) + "_" + name
}
