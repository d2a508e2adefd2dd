// Package flagx contains helpers for components that share one process-wide
// argument list but parse their own flag subsets.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the subset of args containing only the allowed flags
// and their values. Two forms are recognized:
//
//  1. flag and value as separate arguments:  -c conf.json
//  2. flag and value combined with '=':      --config=conf.json
//
// A token starting with '-' is never consumed as a value, so "-c --other"
// keeps only "-c". Unknown flags and positional arguments are dropped.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]bool, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = true
	}

	result := []string{}
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if allowed[arg] {
			result = append(result, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				result = append(result, args[i+1])
				i++
			}
			continue
		}

		if eq := strings.Index(arg, "="); eq > 0 && allowed[arg[:eq]] {
			result = append(result, arg)
		}
	}
	return result
}

// JsonConfigFlags returns the JSON config file path passed via -c/-config,
// or an empty string if neither flag is present.
func JsonConfigFlags() string {
	args := FilterArgs(os.Args[1:], []string{"-c", "-config", "--config"})

	fs := flag.NewFlagSet("jsonconfig", flag.ContinueOnError)

	var short, long string
	fs.StringVar(&short, "c", "", "path to JSON config file (short)")
	fs.StringVar(&long, "config", "", "path to JSON config file")

	if err := fs.Parse(args); err != nil {
		return ""
	}

	if long != "" {
		return long
	}
	return short
}
