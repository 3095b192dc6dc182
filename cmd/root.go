// bootstrap [init] [keyword...], bootstrap clean, bootstrap ci-lint, bootstrap ci-test
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/qobs-build/bootstrap/internal/bootstrap"
	"github.com/qobs-build/bootstrap/internal/config"
	"github.com/qobs-build/bootstrap/internal/keyword"
	"github.com/qobs-build/bootstrap/internal/msg"
	"github.com/qobs-build/bootstrap/internal/proc"
	"github.com/qobs-build/bootstrap/internal/vcs"
	"github.com/spf13/cobra"
)

// RootEnv overrides the repository root that is otherwise discovered from
// the working directory.
const RootEnv = "BOOTSTRAP_ROOT"

var newRunner = func(verbose bool) proc.Runner {
	return &proc.Exec{Verbose: verbose}
}

// invocation is the state shared by the command tree during one run.
type invocation struct {
	app bootstrap.App
	// set once cobra has accepted the command line; errors before that are usage errors
	dispatched bool
}

func (inv *invocation) setup(cmd *cobra.Command, args []string) error {
	inv.dispatched = true
	if cmd.DisableFlagParsing {
		// help is handled by RunE and needs no repository state
		if _, help, _ := scanArgs(args); help {
			return nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not get current directory: %w", err)
	}

	root := os.Getenv(RootEnv)
	if root == "" {
		if root, err = vcs.RootOrDir(cwd); err != nil {
			return fmt.Errorf("could not find repository root: %w", err)
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate own executable: %w", err)
	}

	inv.app.Root = root
	inv.app.Dir = cwd
	inv.app.Config = cfg
	inv.app.Self = self
	if !color.NoColor {
		inv.app.Progress = msg.Out
	}
	return nil
}

func newSubcommand(inv *invocation, spec bootstrap.Spec) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:                spec.Name,
		Short:              spec.Short,
		DisableFlagParsing: spec.FreeArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if spec.FreeArgs {
				var help bool
				verbose, help, args = scanArgs(args)
				if help {
					return cmd.Help()
				}
			}
			inv.app.Verbose = verbose
			inv.app.Runner = newRunner(verbose)
			return inv.app.Run(cmd.Context(), spec.Command, args)
		},
	}
	switch {
	case spec.NoArgs:
		cmd.Args = cobra.NoArgs
	case spec.Command == bootstrap.CommandCILint:
		cmd.Use += " [cpp|python...]"
	default:
		cmd.Use += " [keyword...]"
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	return cmd
}

func newRootCmd(inv *invocation) *cobra.Command {
	root := &cobra.Command{
		Use:   getProgramName(),
		Short: "Prepare a CMake build directory",
		Long: `Prepare a CMake build directory from friendly keywords.

Without a subcommand, arguments are handed to "init". Keywords:
  ` + keyword.Help + `
Arguments starting with '-' are passed to cmake unchanged.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: inv.setup,
	}
	for _, spec := range bootstrap.Commands() {
		root.AddCommand(newSubcommand(inv, spec))
	}
	return root
}

func commandNames(root *cobra.Command) []string {
	names := []string{"help", "completion"}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
		names = append(names, c.Aliases...)
	}
	return names
}

// run executes one command line and returns the process exit status.
func run(ctx context.Context, args []string) int {
	inv := &invocation{}
	root := newRootCmd(inv)
	root.SetArgs(bootstrap.WithDefaultCommand(args, commandNames(root)))

	err := root.ExecuteContext(ctx)
	if err != nil && !inv.dispatched {
		err = &bootstrap.UsageError{Err: err}
	}

	status := bootstrap.ExitStatus(err)
	switch status {
	case bootstrap.ExitOK:
	case bootstrap.ExitUsage:
		fmt.Fprintf(msg.Err, "%s: error: %v\n", getProgramName(), err)
	default:
		msg.Error("%v", err)
	}
	return status
}

func Execute() {
	os.Exit(run(context.Background(), os.Args[1:]))
}
