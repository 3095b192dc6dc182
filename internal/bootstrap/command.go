package bootstrap

import (
	"context"
	"slices"
)

// Command enumerates the subcommands.
type Command int

const (
	CommandInit Command = iota
	CommandClean
	CommandCILint
	CommandCITest
)

// DefaultCommand runs when no subcommand is named.
const DefaultCommand = CommandInit

var commandNames = [...]string{
	CommandInit:   "init",
	CommandClean:  "clean",
	CommandCILint: "ci-lint",
	CommandCITest: "ci-test",
}

// Spec describes a subcommand for the CLI layer.
type Spec struct {
	Command Command
	Name    string
	Short   string

	// FreeArgs is set when positional arguments may themselves start with
	// '-' and must reach the handler verbatim.
	FreeArgs bool
	// NoArgs is set when the subcommand takes no positional arguments.
	NoArgs bool

	Handler func(a *App, ctx context.Context, args []string) error
}

var registry = []Spec{
	{
		Command:  CommandInit,
		Name:     CommandInit.String(),
		Short:    "initialize the build",
		FreeArgs: true,
		Handler:  (*App).Init,
	},
	{
		Command: CommandClean,
		Name:    CommandClean.String(),
		Short:   "clean up the working directory",
		NoArgs:  true,
		Handler: func(a *App, ctx context.Context, _ []string) error { return a.Clean(ctx) },
	},
	{
		Command: CommandCILint,
		Name:    CommandCILint.String(),
		Short:   "run linters for CI",
		Handler: (*App).CILint,
	},
	{
		Command:  CommandCITest,
		Name:     CommandCITest.String(),
		Short:    "run tests for CI",
		FreeArgs: true,
		Handler:  (*App).CITest,
	},
}

// Commands returns the registry in declaration order.
func Commands() []Spec {
	return slices.Clone(registry)
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}

// Lookup finds a subcommand by name.
func Lookup(name string) (Spec, bool) {
	for _, s := range registry {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// WithDefaultCommand returns args with the default subcommand name prepended
// when none of names occurs anywhere in args. A leading help flag is left
// alone so the top-level help is shown. args is never modified.
func WithDefaultCommand(args []string, names []string) []string {
	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help") {
		return args
	}
	for _, a := range args {
		if slices.Contains(names, a) {
			return args
		}
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, DefaultCommand.String())
	return append(out, args...)
}
