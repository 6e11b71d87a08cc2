package cmdline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Kind selects the flag type of an Option and how string values from the
// environment are converted.
type Kind int

const (
	// KindAuto infers the kind from Default. Options without a default keep
	// whatever value the sources produce.
	KindAuto Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	// KindCount counts repeated flags, like -vvv.
	KindCount
)

// Option is a command option resolved through the precedence chain. With a
// Group, string values are references loaded from that resource group.
type Option struct {
	// Name is the long flag name. The parameter and the variable read from
	// configuration units use it with dashes replaced by underscores.
	Name             string
	Shorthand        string
	Usage            string
	Default          any
	Kind             Kind
	EnvVar           string
	Group            string
	StringExceptions []string
	Required         bool
	// Callback runs with the resolved value before the command body.
	Callback func(value any) error
}

// ParamName is the name used for the parameter and the configuration variable.
func (o Option) ParamName() string {
	return strings.ReplaceAll(o.Name, "-", "_")
}

// FullUsage is the usage text shown in help, with a note on resource loading
// for grouped options.
func (o Option) FullUsage() string {
	if o.Group == "" {
		return o.Usage
	}
	note := fmt.Sprintf("Can be a `%s' resource, a module name, or a path to a file which contains a variable named `%s'.", o.Group, o.ParamName())
	if o.Usage == "" {
		return note
	}
	return o.Usage + " " + note
}

// Declarations renders the flag spellings, "-s, --name".
func (o Option) Declarations() string {
	if o.Shorthand == "" {
		return "--" + o.Name
	}
	return "-" + o.Shorthand + ", --" + o.Name
}

func (o Option) kind() Kind {
	if o.Kind != KindAuto {
		return o.Kind
	}
	switch o.Default.(type) {
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return KindInt
	case float32, float64:
		return KindFloat
	case string:
		return KindString
	default:
		return KindAuto
	}
}

func (o Option) register(flags *pflag.FlagSet) {
	usage := o.FullUsage()
	switch o.kind() {
	case KindBool:
		def, _ := o.Default.(bool)
		flags.BoolP(o.Name, o.Shorthand, def, usage)
	case KindInt:
		def, _ := toInt(o.Default)
		flags.IntP(o.Name, o.Shorthand, def, usage)
	case KindFloat:
		def, _ := toFloat(o.Default)
		flags.Float64P(o.Name, o.Shorthand, def, usage)
	case KindCount:
		flags.CountP(o.Name, o.Shorthand, usage)
	default:
		def, _ := o.Default.(string)
		flags.StringP(o.Name, o.Shorthand, def, usage)
	}
}

// explicit returns the flag value when it was given on the command line.
func (o Option) explicit(flags *pflag.FlagSet) (any, bool) {
	flag := flags.Lookup(o.Name)
	if flag == nil || !flag.Changed {
		return nil, false
	}
	var (
		value any
		err   error
	)
	switch o.kind() {
	case KindBool:
		value, err = flags.GetBool(o.Name)
	case KindInt:
		value, err = flags.GetInt(o.Name)
	case KindFloat:
		value, err = flags.GetFloat64(o.Name)
	case KindCount:
		value, err = flags.GetCount(o.Name)
	default:
		value, err = flags.GetString(o.Name)
	}
	if err != nil {
		return nil, false
	}
	return value, true
}

// coerce converts value to the option kind. Values of other types, and
// every value of a KindAuto option, are returned as they are.
func (o Option) coerce(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch o.kind() {
	case KindInt, KindCount:
		if n, ok := toInt(value); ok {
			return n, nil
		}
		if s, ok := value.(string); ok {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("cliconf: option %s: %q is not a valid integer", o.Name, s)
			}
			return n, nil
		}
	case KindFloat:
		if f, ok := toFloat(value); ok {
			return f, nil
		}
		if s, ok := value.(string); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("cliconf: option %s: %q is not a valid float", o.Name, s)
			}
			return f, nil
		}
	case KindBool:
		if s, ok := value.(string); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("cliconf: option %s: %q is not a valid boolean", o.Name, s)
			}
			return b, nil
		}
	case KindString:
		if _, ok := value.(string); !ok && o.Group == "" {
			return fmt.Sprint(value), nil
		}
	}
	return value, nil
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	}
	return 0, false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	if n, ok := toInt(value); ok {
		return float64(n), true
	}
	return 0, false
}
