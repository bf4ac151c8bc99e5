// Package flagx lets several flag consumers share one argument list.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// flagName returns the name of a flag argument ("-c", "--config=x" -> "c",
// "config") and whether the argument carries its value inline.
func flagName(arg string) (name string, inline bool, ok bool) {
	if len(arg) < 2 || arg[0] != '-' || arg == "--" {
		return "", false, false
	}
	name = strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	if name == "" || strings.HasPrefix(name, "-") {
		return "", false, false
	}
	name, _, inline = strings.Cut(name, "=")
	return name, inline, true
}

// FilterArgs keeps only the flags named in names, given without dashes, and
// their values. Both -name and --name are recognised, with the value either
// inline (-name=v) or in the next argument. Scanning stops at "--".
func FilterArgs(args []string, names []string) []string {
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			break
		}
		name, inline, ok := flagName(args[i])
		if !ok || !allowed[name] {
			continue
		}
		out = append(out, args[i])
		if !inline && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigFileFlag returns the path given with -c or --config, or "".
func ConfigFileFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"c", "config"}))

	return path
}
