// Package bootstrap implements the init, clean, ci-lint and ci-test
// subcommands on top of cmake and git.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/qobs-build/bootstrap/internal/cmake"
	"github.com/qobs-build/bootstrap/internal/config"
	"github.com/qobs-build/bootstrap/internal/keyword"
	"github.com/qobs-build/bootstrap/internal/lint"
	"github.com/qobs-build/bootstrap/internal/msg"
	"github.com/qobs-build/bootstrap/internal/proc"
	"github.com/qobs-build/bootstrap/internal/vcs"
)

// App holds everything a subcommand needs for one invocation.
type App struct {
	Runner proc.Runner
	Config *config.Config
	// Root is the source tree handed to cmake; Dir is the build directory,
	// normally the working directory.
	Root string
	Dir  string
	// Self is the executable re-run by ci-lint and ci-test.
	Self    string
	Verbose bool
	// Progress receives progress bars; nil disables them.
	Progress io.Writer
}

// Run dispatches to the handler registered for c.
func (a *App) Run(ctx context.Context, c Command, args []string) error {
	for _, s := range registry {
		if s.Command == c {
			return classify(s.Handler(a, ctx, args))
		}
	}
	return fmt.Errorf("no handler for command %d", int(c))
}

func (a *App) git() *vcs.Git {
	return vcs.New(a.Runner, a.Config.Tools.Git)
}

func (a *App) cmake() *cmake.CMake {
	return cmake.New(a.Runner, a.Config.Tools.CMake)
}

func (a *App) translator() *keyword.Translator {
	return &keyword.Translator{Dir: a.Dir, Aliases: a.Config.Keywords}
}

// self re-runs this program with the given subcommand, forwarding -v.
func (a *App) self(ctx context.Context, c Command, args ...string) error {
	argv := []string{c.String()}
	if a.Verbose {
		argv = append(argv, "-v")
	}
	argv = append(argv, args...)
	return proc.Check(ctx, a.Runner, &proc.Cmd{Name: a.Self, Args: argv})
}

// Init translates keywords, updates submodules and configures the build
// directory against Root.
func (a *App) Init(ctx context.Context, args []string) error {
	flags, err := a.translator().Translate(args)
	if err != nil {
		return err
	}

	if a.Verbose {
		if subs, err := vcs.Submodules(a.Root); err != nil {
			msg.Warn("could not list submodules: %v", err)
		} else if len(subs) > 0 {
			msg.Info("submodules: %s", strings.Join(subs, ", "))
		}
	}

	if err := a.git().SubmoduleUpdate(ctx, a.Root); err != nil {
		return err
	}
	return a.cmake().Configure(ctx, a.Root, flags, a.Verbose)
}

// Clean deinitializes submodules, ignoring failure, and removes ignored files.
func (a *App) Clean(ctx context.Context) error {
	git := a.git()
	if err := git.SubmoduleDeinit(ctx); err != nil && a.Verbose {
		msg.Warn("ignoring: %v", err)
	}
	return git.Clean(ctx)
}

// CILint cleans the tree through a child process, then runs the linter for
// every requested language.
func (a *App) CILint(ctx context.Context, args []string) error {
	langs, err := lint.ParseLanguages(args)
	if err != nil {
		return err
	}

	if err := a.self(ctx, CommandClean); err != nil {
		return err
	}

	l := &lint.Linter{
		Runner:      a.Runner,
		Git:         a.git(),
		Root:        a.Root,
		ClangFormat: a.Config.Tools.ClangFormat,
		Flake8:      a.Config.Tools.Flake8,
		Exclude:     a.Config.Lint.Exclude,
		Verbose:     a.Verbose,
	}
	if !a.Verbose {
		l.Progress = a.Progress
	}
	for _, lang := range langs {
		if err := l.Run(ctx, lang); err != nil {
			return err
		}
	}
	return nil
}

// CITest builds and checks debug and release configurations, smoke-builds
// benchmarks and exercises the install target. args are forwarded to every init.
func (a *App) CITest(ctx context.Context, args []string) error {
	// reject bad keywords before anything runs
	if _, err := a.translator().Translate(args); err != nil {
		return err
	}

	cm := a.cmake()
	initAnd := func(keywords ...string) error {
		return a.self(ctx, CommandInit, append(keywords, args...)...)
	}

	if err := a.self(ctx, CommandClean); err != nil {
		return err
	}

	for _, buildType := range []string{"debug", "release"} {
		if err := initAnd("strict", buildType); err != nil {
			return err
		}
		if err := cm.Build(ctx, "all"); err != nil {
			return err
		}
		if a.hasTarget(ctx, cm, "check") {
			if err := cm.Build(ctx, "check"); err != nil {
				return err
			}
		}
	}

	// benchmarks are compiled but never run
	if a.hasTarget(ctx, cm, "bench") {
		if err := cm.BuildDir(ctx, "benchmarks"); err != nil {
			return err
		}
	}

	if a.hasTarget(ctx, cm, "install") {
		if err := initAnd("strict", "release", "test-install"); err != nil {
			return err
		}
		if err := cm.Build(ctx, "install"); err != nil {
			return err
		}
	}
	return nil
}

// hasTarget treats a failed target query as "no such target".
func (a *App) hasTarget(ctx context.Context, cm *cmake.CMake, target string) bool {
	ok, err := cm.HasTarget(ctx, target)
	if err != nil {
		msg.Warn("could not query target %q: %v", target, err)
		return false
	}
	return ok
}
