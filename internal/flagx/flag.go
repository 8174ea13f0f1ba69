// Package flagx lets several loaders share os.Args: each one picks out only
// the flags it owns and parses them with its own flag.FlagSet.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the subset of args that belongs to valueFlags or
// boolFlags, preserving order.
//
// Value flags are accepted as "-f value" or "-f=value"; the token after a
// value flag is taken as its value unless it starts with '-'. Bool flags are
// accepted as "-f" or "-f=true|false" and never consume the next token.
func FilterArgs(args []string, valueFlags []string, boolFlags ...string) []string {
	values := toSet(valueFlags)
	bools := toSet(boolFlags)

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := values[name]; ok {
				filtered = append(filtered, arg)
			} else if _, ok := bools[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := bools[arg]; ok {
			filtered = append(filtered, arg)
			continue
		}

		if _, ok := values[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFileFlag returns the path given with -c or -config, or "" when
// neither is present. Later occurrences win.
func ConfigFileFlag() string {
	var path string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(args)

	return path
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
