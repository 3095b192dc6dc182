// Package lint implements the ci-lint procedures: clang-format conformance
// for C/C++ sources and flake8 for Python.
package lint

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/qobs-build/bootstrap/internal/msg"
	"github.com/qobs-build/bootstrap/internal/proc"
	"github.com/qobs-build/bootstrap/internal/vcs"
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/sync/errgroup"
)

type Language string

const (
	CPP    Language = "cpp"
	Python Language = "python"
)

// UnknownError reports a token outside the lint vocabulary.
type UnknownError struct {
	Token string
}

func (e *UnknownError) Error() string {
	return "unknown keyword: " + e.Token
}

// Failure is a lint check that did not pass. Status is the exit status of
// the command that detected it and becomes the process exit status.
type Failure struct {
	Language Language
	Status   int
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s lint failed with status %d", f.Language, f.Status)
}

// ParseLanguages maps tokens case-insensitively onto languages, dropping
// repeats. No tokens means cpp.
func ParseLanguages(tokens []string) ([]Language, error) {
	var langs []Language
	for _, tok := range tokens {
		var lang Language
		switch strings.ToLower(tok) {
		case string(CPP):
			lang = CPP
		case string(Python):
			lang = Python
		default:
			return nil, &UnknownError{Token: tok}
		}
		if !slices.Contains(langs, lang) {
			langs = append(langs, lang)
		}
	}
	if len(langs) == 0 {
		langs = append(langs, CPP)
	}
	return langs, nil
}

// sourcePattern matches the C and C++ source and header extensions.
const sourcePattern = "**/*.{c,C,c++,cc,cpp,cxx,h,hh,h++,hpp,hxx}"

// FindSources returns the C/C++ files under root, skipping CMakeFiles*
// directories and anything matched by the exclude patterns. Paths are
// absolute and sorted.
func FindSources(root string, exclude []string) ([]string, error) {
	var files []string
	err := doublestar.GlobWalk(os.DirFS(root), sourcePattern, func(path string, d os.DirEntry) error {
		for _, dir := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
			if strings.HasPrefix(dir, "CMakeFiles") {
				return nil
			}
		}
		for _, pat := range exclude {
			if ok, _ := doublestar.Match(pat, path); ok {
				return nil
			}
		}
		files = append(files, filepath.Join(root, filepath.FromSlash(path)))
		return nil
	}, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("while globbing %s: %w", root, err)
	}
	slices.Sort(files)
	return files, nil
}

// Linter runs the lint procedures against the repository at Root.
type Linter struct {
	Runner      proc.Runner
	Git         *vcs.Git
	Root        string
	ClangFormat string
	Flake8      string
	Exclude     []string
	Verbose     bool
	// Progress receives a progress bar for the formatter pass; nil disables it.
	Progress io.Writer
}

// Run runs the procedure for lang.
func (l *Linter) Run(ctx context.Context, lang Language) error {
	switch lang {
	case CPP:
		return l.CPP(ctx)
	case Python:
		return l.Python(ctx)
	default:
		return &UnknownError{Token: string(lang)}
	}
}

// CPP reformats every source in place with clang-format and fails when the
// working tree then differs from the index.
func (l *Linter) CPP(ctx context.Context) error {
	if l.Verbose {
		if err := proc.Check(ctx, l.Runner, &proc.Cmd{Name: l.ClangFormat, Args: []string{"--version"}}); err != nil {
			return err
		}
	}

	files, err := FindSources(l.Root, l.Exclude)
	if err != nil {
		return err
	}

	before, err := snapshot(ctx, files)
	if err != nil {
		return err
	}

	var pb *msg.ProgressBar
	if l.Progress != nil && len(files) > 0 {
		pb = msg.NewProgressBar(len(files), 2, l.Progress)
	}
	for _, f := range files {
		if err := proc.Check(ctx, l.Runner, &proc.Cmd{Name: l.ClangFormat, Args: []string{"-i", f}}); err != nil {
			return err
		}
		if pb != nil {
			pb.Add(1)
		}
	}
	if pb != nil {
		pb.Finish()
	}

	if err := l.report(files, before); err != nil {
		return err
	}

	status, err := l.Git.DiffStatus(ctx, l.Root)
	if err != nil {
		return err
	}
	if status != 0 {
		return &Failure{Language: CPP, Status: status}
	}
	return nil
}

// Python runs flake8 from the current directory.
func (l *Linter) Python(ctx context.Context) error {
	if l.Verbose {
		if err := proc.Check(ctx, l.Runner, &proc.Cmd{Name: l.Flake8, Args: []string{"--version"}}); err != nil {
			return err
		}
	}
	status, err := l.Runner.Run(ctx, &proc.Cmd{Name: l.Flake8})
	if err != nil {
		return err
	}
	if status != 0 {
		return &Failure{Language: Python, Status: status}
	}
	return nil
}

// snapshot reads files concurrently. Only file reads run in parallel; the
// formatter itself is invoked one file at a time.
func snapshot(ctx context.Context, files []string) ([]string, error) {
	contents := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(f)
			if err != nil {
				return err
			}
			contents[i] = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return contents, nil
}

// report names the files the formatter changed, with a diff when verbose.
func (l *Linter) report(files, before []string) error {
	dmp := diffmatchpatch.New()
	for i, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		after := string(data)
		if after == before[i] {
			continue
		}

		rel, err := filepath.Rel(l.Root, f)
		if err != nil {
			rel = f
		}
		msg.Status("Formatted", "%s", filepath.ToSlash(rel))
		if l.Verbose {
			diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before[i], after, false))
			w := &msg.IndentWriter{Indent: "    ", W: msg.Out}
			fmt.Fprintln(w, dmp.DiffPrettyText(diffs))
		}
	}
	return nil
}
