package cmd

import (
	"os"
	"path/filepath"
	"strings"
)

func getProgramName() string {
	if len(os.Args) == 0 {
		return "bootstrap"
	}
	basename := filepath.Base(os.Args[0])
	return strings.TrimSuffix(basename, filepath.Ext(basename))
}

// scanArgs pulls -v/--verbose and -h/--help out of args for commands whose
// positional arguments may look like flags. Everything after "--" is kept
// as is.
func scanArgs(args []string) (verbose, help bool, rest []string) {
	rest = make([]string, 0, len(args))
	for i, a := range args {
		switch a {
		case "-v", "--verbose":
			verbose = true
		case "-h", "--help":
			help = true
		case "--":
			return verbose, help, append(rest, args[i+1:]...)
		default:
			rest = append(rest, a)
		}
	}
	return verbose, help, rest
}
